package l6compare

import "math"

// Alignment is the result of a DTW run.
type Alignment struct {
	Distance   float64 // cumulative cost at the final cell
	PathLength int     // cells on the optimal warping path
}

// DTW aligns two series with classic dynamic time warping:
//
//	cell(i,j) = |ref[i] - cand[j]| + min(cell(i-1,j), cell(i,j-1), cell(i-1,j-1))
//
// with the first row and column seeded by cumulative edge costs. A
// positive window restricts cells to a Sakoe-Chiba band |i-j| <= w; the
// band is widened to |n-m| so the final cell stays reachable. Empty input
// yields a zero Alignment.
func DTW(ref, cand []float64, window int) Alignment {
	n, m := len(ref), len(cand)
	if n == 0 || m == 0 {
		return Alignment{}
	}

	w := math.MaxInt
	if window > 0 {
		w = window
		if d := absInt(n - m); d > w {
			w = d
		}
	}

	inf := math.Inf(1)
	cost := make([]float64, n*m)
	at := func(i, j int) float64 {
		if i < 0 || j < 0 {
			return inf
		}
		return cost[i*m+j]
	}

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if absInt(i-j) > w {
				cost[i*m+j] = inf
				continue
			}
			local := math.Abs(ref[i] - cand[j])
			switch {
			case i == 0 && j == 0:
				cost[0] = local
			case i == 0:
				cost[j] = local + at(0, j-1)
			case j == 0:
				cost[i*m] = local + at(i-1, 0)
			default:
				cost[i*m+j] = local + math.Min(at(i-1, j-1), math.Min(at(i-1, j), at(i, j-1)))
			}
		}
	}

	// Walk back along the cheapest predecessors, preferring the diagonal
	// on ties.
	i, j, steps := n-1, m-1, 1
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag, up, left := at(i-1, j-1), at(i-1, j), at(i, j-1)
			switch {
			case diag <= up && diag <= left:
				i, j = i-1, j-1
			case up <= left:
				i--
			default:
				j--
			}
		}
		steps++
	}

	return Alignment{Distance: cost[n*m-1], PathLength: steps}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
