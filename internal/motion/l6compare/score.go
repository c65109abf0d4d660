package l6compare

import (
	"math"

	"github.com/banshee-data/motion.report/internal/config"
)

// Score maps an average per-frame angular difference to 0..100. Both
// curves are monotonically decreasing, give 100 at 0 and 0 at or beyond
// ceiling.
//
//	linear:      100 * (1 - avg/ceiling)
//	exponential: 100 * (e^(-k*avg) - e^(-k*ceiling)) / (1 - e^(-k*ceiling))
//
// The exponential curve punishes small errors harder than the linear one.
func Score(avg float64, curve string, ceiling, decay float64) float64 {
	if avg <= 0 {
		return 100
	}
	if avg >= ceiling {
		return 0
	}

	var s float64
	switch curve {
	case config.ScoreCurveExponential:
		floor := math.Exp(-decay * ceiling)
		s = 100 * (math.Exp(-decay*avg) - floor) / (1 - floor)
	default:
		s = 100 * (1 - avg/ceiling)
	}
	return math.Max(0, math.Min(100, s))
}
