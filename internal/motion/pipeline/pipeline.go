package pipeline

import (
	"fmt"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l1pose"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l3signal"
	"github.com/banshee-data/motion.report/internal/motion/l4reps"
	"github.com/banshee-data/motion.report/internal/motion/session"
	"github.com/banshee-data/motion.report/internal/timeutil"
)

// ResultSink persists completed session results. It is an adapter, so
// implementations live outside the layer packages (see
// internal/motion/storage/sqlite).
type ResultSink interface {
	InsertResult(r *session.Result) error
}

// Config holds the dependencies of a Pipeline.
type Config struct {
	Geometry  l2angles.Config
	Signal    l3signal.Config
	Exercises []l4reps.Exercise
	Rules     []l4reps.Rule
	Session   session.Config
	Clock     timeutil.Clock // optional; nil uses wall time
	Results   ResultSink     // optional
}

// ConfigFromTuning resolves the named exercises and the default posture
// rules from tuning.
func ConfigFromTuning(cfg *config.TuningConfig, exercises ...string) (Config, error) {
	out := Config{
		Geometry: l2angles.ConfigFromTuning(cfg),
		Signal:   l3signal.ConfigFromTuning(cfg),
		Rules:    l4reps.DefaultRules(cfg.GetPostureTolerance()),
	}
	for _, name := range exercises {
		ex, err := l4reps.ResolveExercise(cfg, name)
		if err != nil {
			return Config{}, err
		}
		out.Exercises = append(out.Exercises, ex)
	}
	sess, err := session.ConfigFromTuning(cfg)
	if err != nil {
		return Config{}, fmt.Errorf("session config: %w", err)
	}
	out.Session = sess
	return out, nil
}

// FrameReport is everything the pipeline derived from one frame.
type FrameReport struct {
	TimestampNanos int64                   `json:"timestamp_ns"`
	Angles         l2angles.AngleSet       `json:"angles"`
	Posture        l2angles.PostureMetrics `json:"posture"`
	Reps           []l4reps.TrackerUpdate  `json:"reps,omitempty"`
	Rules          []l4reps.RuleResult     `json:"rules,omitempty"`
	Session        session.FrameResult     `json:"session"`
	SessionError   string                  `json:"session_error,omitempty"`
}

// Stats counts processed frames.
type Stats struct {
	Frames        int `json:"frames"`
	EmptyFrames   int `json:"empty_frames"` // no defined joint angle
	SessionErrors int `json:"session_errors"`
}

// Pipeline runs every frame through geometry, the exercise trackers, the
// posture monitor and the session controller. Not safe for concurrent
// Process calls; the controller itself may be driven from other
// goroutines.
type Pipeline struct {
	engine     *l2angles.Engine
	trackers   []*l4reps.ExerciseTracker
	monitor    *l4reps.PostureMonitor
	controller *session.Controller
	results    ResultSink
	stats      Stats
}

// New builds a Pipeline from cfg.
func New(cfg Config) (*Pipeline, error) {
	p := &Pipeline{
		engine:     l2angles.NewEngine(cfg.Geometry),
		controller: session.NewController(cfg.Session, cfg.Clock),
		results:    cfg.Results,
	}
	for _, ex := range cfg.Exercises {
		t, err := l4reps.NewExerciseTracker(ex, cfg.Signal)
		if err != nil {
			return nil, fmt.Errorf("exercise %q: %w", ex.Name, err)
		}
		p.trackers = append(p.trackers, t)
	}
	mon, err := l4reps.NewPostureMonitor(cfg.Signal, cfg.Rules)
	if err != nil {
		return nil, err
	}
	p.monitor = mon
	return p, nil
}

// NewFromTuning is a convenience wrapper around ConfigFromTuning and New.
func NewFromTuning(cfg *config.TuningConfig, exercises ...string) (*Pipeline, error) {
	pc, err := ConfigFromTuning(cfg, exercises...)
	if err != nil {
		return nil, err
	}
	return New(pc)
}

// Process consumes one pose frame.
func (p *Pipeline) Process(f l1pose.PoseFrame) FrameReport {
	p.stats.Frames++
	ts := f.TimestampNanos

	rep := FrameReport{
		TimestampNanos: ts,
		Angles:         p.engine.JointAngles(f),
		Posture:        p.engine.Posture(f),
	}
	if rep.Angles.ValidCount() == 0 {
		p.stats.EmptyFrames++
		tracef("frame %d: no defined joint angles (%d keypoints)", ts, len(f.Keypoints))
	}

	for _, t := range p.trackers {
		u := t.Update(rep.Angles, ts)
		if u.Counted {
			diagf("%s: %d reps", u.Exercise, u.Count)
		}
		rep.Reps = append(rep.Reps, u)
	}

	p.monitor.Update(rep.Posture, ts)
	rep.Rules = p.monitor.Evaluate()

	res, err := p.controller.ProcessFrame(rep.Angles, ts)
	if err != nil {
		p.stats.SessionErrors++
		opsf("frame %d: session %s: %v", ts, res.State, err)
		rep.SessionError = err.Error()
	}
	rep.Session = res
	return rep
}

// StopPractice ends the practice run, scores it and hands the result to
// the configured sink. A sink failure is logged; the result is still
// returned.
func (p *Pipeline) StopPractice() (*session.Result, error) {
	res, err := p.controller.StopPractice()
	if err != nil {
		return nil, err
	}
	p.persist(res)
	return res, nil
}

func (p *Pipeline) persist(res *session.Result) {
	if p.results == nil {
		return
	}
	if err := p.results.InsertResult(res); err != nil {
		opsf("session %s: failed to persist result: %v", res.SessionID, err)
		return
	}
	diagf("session %s: result persisted (score %.1f)", res.SessionID, res.OverallScore)
}

// Calibrate snapshots the current posture as the baseline.
func (p *Pipeline) Calibrate() (int, error) {
	return p.monitor.Calibrate()
}

// Controller returns the session controller.
func (p *Pipeline) Controller() *session.Controller {
	return p.controller
}

// Monitor returns the posture monitor.
func (p *Pipeline) Monitor() *l4reps.PostureMonitor {
	return p.monitor
}

// Counts returns the repetition count of every tracked exercise.
func (p *Pipeline) Counts() map[string]int {
	out := make(map[string]int, len(p.trackers))
	for _, t := range p.trackers {
		out[t.Exercise().Name] = t.Count()
	}
	return out
}

// Stats returns frame counters.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Reset clears trackers, posture state and counters. The session
// controller and its reference are untouched.
func (p *Pipeline) Reset() {
	for _, t := range p.trackers {
		t.Reset()
	}
	p.monitor.Reset()
	p.stats = Stats{}
}
