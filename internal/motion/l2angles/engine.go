package l2angles

import (
	"fmt"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l1pose"
)

// Config holds geometry engine parameters.
type Config struct {
	ConfidenceFloor float64 // minimum keypoint visibility
	PreferWorld     bool    // use world coordinates when all three landmarks carry them
	MinSpineExtent  float64 // minimum vertical torso extent for spine curve (image units)
}

// DefaultConfig returns the built-in geometry parameters.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		ConfidenceFloor: cfg.GetConfidenceFloor(),
		PreferWorld:     cfg.GetPreferWorldCoords(),
		MinSpineExtent:  cfg.GetMinSpineExtent(),
	}
}

// Engine computes joint angles and posture metrics from pose frames. It
// holds no per-frame state and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// JointAngle computes one catalogued joint. Unknown joints are an error;
// missing or low-confidence landmarks yield Undefined.
func (e *Engine) JointAngle(f l1pose.PoseFrame, j Joint) (Angle, error) {
	t, ok := Catalogue[j]
	if !ok {
		return Undefined, fmt.Errorf("unknown joint %q", j)
	}
	return e.tripleAngle(f, t), nil
}

// CustomAngle computes the vertex angle for arbitrary landmarks.
func (e *Engine) CustomAngle(f l1pose.PoseFrame, a, vertex, c l1pose.Landmark) Angle {
	return e.tripleAngle(f, Triple{A: a, Vertex: vertex, C: c})
}

// JointAngles computes the full catalogue. Every joint is present in the
// result; insufficient joints are Undefined.
func (e *Engine) JointAngles(f l1pose.PoseFrame) AngleSet {
	out := make(AngleSet, len(Catalogue))
	for _, j := range Joints {
		out[j] = e.tripleAngle(f, Catalogue[j])
	}
	return out
}

func (e *Engine) tripleAngle(f l1pose.PoseFrame, t Triple) Angle {
	ka, okA := f.Visible(t.A, e.cfg.ConfidenceFloor)
	kb, okB := f.Visible(t.Vertex, e.cfg.ConfidenceFloor)
	kc, okC := f.Visible(t.C, e.cfg.ConfidenceFloor)
	if !okA || !okB || !okC {
		return Undefined
	}

	var a, b, c l1pose.Vec3
	if e.cfg.PreferWorld && ka.World != nil && kb.World != nil && kc.World != nil {
		a, b, c = *ka.World, *kb.World, *kc.World
	} else {
		a, b, c = ka.Image(), kb.Image(), kc.Image()
	}

	deg, ok := AngleAt(a, b, c)
	if !ok {
		return Undefined
	}
	return Defined(deg)
}
