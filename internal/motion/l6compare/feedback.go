package l6compare

import (
	"math"
	"sort"
	"time"

	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l5sequence"
)

// Tier buckets a live per-joint difference.
type Tier string

const (
	TierGood       Tier = "good"
	TierAcceptable Tier = "acceptable"
	TierNeedsWork  Tier = "needs_work"
	TierUnknown    Tier = "unknown" // either side undefined
)

// JointFeedback is the live comparison of one joint.
type JointFeedback struct {
	Tier       Tier           `json:"tier"`
	Difference float64        `json:"difference"` // absolute, degrees; 0 when Tier is unknown
	Reference  l2angles.Angle `json:"reference"`
	Practice   l2angles.Angle `json:"practice"`
}

// LiveFeedback compares one practice frame to the time-matched
// reference frame.
type LiveFeedback struct {
	ReferenceIndex int                              `json:"reference_index"`
	Joints         map[l2angles.Joint]JointFeedback `json:"joints"`
}

// Worst returns the poorest defined tier, or TierUnknown when no joint
// was comparable.
func (f LiveFeedback) Worst() Tier {
	rank := map[Tier]int{TierUnknown: 0, TierGood: 1, TierAcceptable: 2, TierNeedsWork: 3}
	worst := TierUnknown
	for _, jf := range f.Joints {
		if rank[jf.Tier] > rank[worst] {
			worst = jf.Tier
		}
	}
	return worst
}

// ReferenceIndexAt returns the last reference frame whose offset from
// the start is at or before elapsed, clamped to the sequence bounds.
// Practice is assumed to follow the reference tempo.
func ReferenceIndexAt(ref *l5sequence.Sequence, elapsed time.Duration) int {
	n := ref.Len()
	if n == 0 || elapsed <= 0 {
		return 0
	}
	i := sort.Search(n, func(i int) bool { return ref.Offset(i) > elapsed })
	if i == 0 {
		return 0
	}
	return i - 1
}

// Classify buckets an absolute difference.
func (c *Comparer) Classify(diff float64) Tier {
	switch {
	case diff < c.cfg.GoodDegrees:
		return TierGood
	case diff <= c.cfg.AcceptableDegrees:
		return TierAcceptable
	default:
		return TierNeedsWork
	}
}

// LiveFeedback compares practice angles at elapsed time since practice
// start against the reference. It is an unaligned O(joints) check.
func (c *Comparer) LiveFeedback(ref *l5sequence.Sequence, elapsed time.Duration, practice l2angles.AngleSet) LiveFeedback {
	out := LiveFeedback{Joints: make(map[l2angles.Joint]JointFeedback)}
	if ref.Len() == 0 {
		return out
	}
	idx := ReferenceIndexAt(ref, elapsed)
	out.ReferenceIndex = idx

	joints := c.cfg.Joints
	if len(joints) == 0 {
		joints = ref.Joints()
	}
	for _, j := range joints {
		r := ref.AngleAt(idx, j)
		p := practice.Get(j)
		jf := JointFeedback{Tier: TierUnknown, Reference: r, Practice: p}
		if r.Valid && p.Valid {
			jf.Difference = math.Abs(r.Degrees - p.Degrees)
			jf.Tier = c.Classify(jf.Difference)
		}
		out.Joints[j] = jf
	}
	return out
}
