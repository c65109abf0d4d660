package l2angles

import (
	"math"

	"github.com/banshee-data/motion.report/internal/motion/l1pose"
)

// minRayLength is the shortest ray for which a vertex angle is defined.
const minRayLength = 1e-9

// Angle is a measurement in degrees. The zero value is undefined.
type Angle struct {
	Degrees float64
	Valid   bool
}

// Undefined is the explicit "no signal" measurement.
var Undefined = Angle{}

// Defined wraps a measured value.
func Defined(deg float64) Angle {
	return Angle{Degrees: deg, Valid: true}
}

// Get returns the value and whether it is defined.
func (a Angle) Get() (float64, bool) {
	return a.Degrees, a.Valid
}

// AngleAt returns the angle at vertex b between rays b->a and b->c, in
// degrees within [0, 180]. It reports false when either ray is degenerate.
// 2D input works unchanged since Z is zero padded.
func AngleAt(a, b, c l1pose.Vec3) (float64, bool) {
	ba := a.Sub(b)
	bc := c.Sub(b)

	nba := math.Sqrt(ba.X*ba.X + ba.Y*ba.Y + ba.Z*ba.Z)
	nbc := math.Sqrt(bc.X*bc.X + bc.Y*bc.Y + bc.Z*bc.Z)
	if nba < minRayLength || nbc < minRayLength {
		return 0, false
	}

	cosine := (ba.X*bc.X + ba.Y*bc.Y + ba.Z*bc.Z) / (nba * nbc)
	// Clamp rounding drift outside [-1, 1].
	cosine = math.Max(-1, math.Min(1, cosine))
	return math.Acos(cosine) * 180 / math.Pi, true
}

// foldHorizontal maps a direction angle onto (-90, 90] so that a segment
// and its reverse report the same tilt.
func foldHorizontal(deg float64) float64 {
	switch {
	case deg > 90:
		return deg - 180
	case deg <= -90:
		return deg + 180
	}
	return deg
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
