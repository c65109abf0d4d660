package l6compare

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l5sequence"
)

// Config holds comparison parameters.
type Config struct {
	MinFrames          int              // both sequences must have at least this many frames
	MinComparablePairs int              // valid samples needed on each side to score a joint
	Window             int              // Sakoe-Chiba band, 0 = unbounded
	Curve              string           // config.ScoreCurveLinear or config.ScoreCurveExponential
	CeilingDegrees     float64          // average difference that scores 0
	Decay              float64          // exponential curve rate
	GoodDegrees        float64          // live feedback: below is good
	AcceptableDegrees  float64          // live feedback: up to and including is acceptable
	Joints             []l2angles.Joint // joints to compare; empty compares every joint present
}

// DefaultConfig returns the built-in comparison parameters.
func DefaultConfig() Config {
	cfg, _ := ConfigFromTuning(config.EmptyTuningConfig())
	return cfg
}

// ConfigFromTuning builds a Config from tuning, rejecting unknown key
// joints.
func ConfigFromTuning(cfg *config.TuningConfig) (Config, error) {
	out := Config{
		MinFrames:          cfg.GetMinSequenceFrames(),
		MinComparablePairs: cfg.GetMinComparablePairs(),
		Window:             cfg.GetDTWWindow(),
		Curve:              cfg.GetScoreCurve(),
		CeilingDegrees:     cfg.GetScoreCeilingDegrees(),
		Decay:              cfg.GetScoreDecay(),
		GoodDegrees:        cfg.GetFeedbackGoodDegrees(),
		AcceptableDegrees:  cfg.GetFeedbackAcceptableDegrees(),
	}
	for _, name := range cfg.GetKeyJoints() {
		j, ok := l2angles.ParseJoint(name)
		if !ok {
			return Config{}, fmt.Errorf("unknown key joint %q", name)
		}
		out.Joints = append(out.Joints, j)
	}
	return out, nil
}

// JointReport is the comparison outcome for one joint.
type JointReport struct {
	Joint           l2angles.Joint `json:"joint"`
	Valid           bool           `json:"valid"` // false when too few comparable samples
	Distance        float64        `json:"distance"`
	AverageDegrees  float64        `json:"average_degrees"` // Distance / max(n, m)
	Score           float64        `json:"score"`
	ComparablePairs int            `json:"comparable_pairs"` // min of valid samples on each side
	PathLength      int            `json:"path_length"`
}

// Report is the outcome of comparing a candidate to a reference.
type Report struct {
	ReferenceID     string                         `json:"reference_id"`
	CandidateID     string                         `json:"candidate_id"`
	Overall         float64                        `json:"overall"`
	Spread          float64                        `json:"spread"` // standard deviation of defined joint scores
	Scored          int                            `json:"scored"`
	Joints          map[l2angles.Joint]JointReport `json:"joints"`
	ReferenceFrames int                            `json:"reference_frames"`
	CandidateFrames int                            `json:"candidate_frames"`
}

// Comparer scores candidate sequences against references. It holds no
// mutable state and is safe for concurrent use.
type Comparer struct {
	cfg Config
}

// NewComparer creates a Comparer.
func NewComparer(cfg Config) *Comparer {
	return &Comparer{cfg: cfg}
}

// Config returns the comparison parameters.
func (c *Comparer) Config() Config {
	return c.cfg
}

// Compare aligns every joint of cand against ref. Undefined samples are
// dropped from each series before alignment, preserving order; a joint
// left with fewer than MinComparablePairs samples on either side is
// reported with Valid=false and excluded from the overall score.
func (c *Comparer) Compare(ref, cand *l5sequence.Sequence) (*Report, error) {
	if ref.Len() < c.cfg.MinFrames {
		return nil, fmt.Errorf("reference: %w: %d frames, need %d", l5sequence.ErrSequenceTooShort, ref.Len(), c.cfg.MinFrames)
	}
	if cand.Len() < c.cfg.MinFrames {
		return nil, fmt.Errorf("candidate: %w: %d frames, need %d", l5sequence.ErrSequenceTooShort, cand.Len(), c.cfg.MinFrames)
	}

	joints := c.cfg.Joints
	if len(joints) == 0 {
		joints = unionJoints(ref, cand)
	}

	rep := &Report{
		ReferenceID:     ref.ID(),
		CandidateID:     cand.ID(),
		Joints:          make(map[l2angles.Joint]JointReport, len(joints)),
		ReferenceFrames: ref.Len(),
		CandidateFrames: cand.Len(),
	}

	var scores []float64
	for _, j := range joints {
		jr := c.CompareJoint(j, ref.JointSeries(j), cand.JointSeries(j))
		rep.Joints[j] = jr
		if jr.Valid {
			scores = append(scores, jr.Score)
		}
	}

	if len(scores) == 0 {
		return rep, ErrAllJointsUndefined
	}
	rep.Scored = len(scores)
	rep.Overall = stat.Mean(scores, nil)
	if len(scores) > 1 {
		rep.Spread = stat.StdDev(scores, nil)
	}
	return rep, nil
}

// CompareJoint aligns and scores one joint's series.
func (c *Comparer) CompareJoint(j l2angles.Joint, ref, cand []l2angles.Angle) JointReport {
	r := validValues(ref)
	k := validValues(cand)

	jr := JointReport{Joint: j, ComparablePairs: min(len(r), len(k))}
	if jr.ComparablePairs < c.cfg.MinComparablePairs || jr.ComparablePairs == 0 {
		return jr
	}

	a := DTW(r, k, c.cfg.Window)
	jr.Valid = true
	jr.Distance = a.Distance
	jr.PathLength = a.PathLength
	jr.AverageDegrees = a.Distance / float64(max(len(r), len(k)))
	jr.Score = Score(jr.AverageDegrees, c.cfg.Curve, c.cfg.CeilingDegrees, c.cfg.Decay)
	return jr
}

func validValues(series []l2angles.Angle) []float64 {
	out := make([]float64, 0, len(series))
	for _, a := range series {
		if a.Valid {
			out = append(out, a.Degrees)
		}
	}
	return out
}

func unionJoints(a, b *l5sequence.Sequence) []l2angles.Joint {
	seen := make(map[l2angles.Joint]bool)
	var out []l2angles.Joint
	for _, s := range []*l5sequence.Sequence{a, b} {
		for _, j := range s.Joints() {
			if !seen[j] {
				seen[j] = true
				out = append(out, j)
			}
		}
	}
	return out
}
