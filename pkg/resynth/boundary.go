package resynth

import (
	"sort"

	"github.com/orvendai/resynth/pkg/raster"
)

// eightNeighbourOffsets is the 3x3 neighbourhood excluding the center,
// used both for the island test and for coherence propagation (4.F).
var eightNeighbourOffsets = []raster.Coordinate{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// undefinedComplexity is the sentinel complexity assigned to a pixel
// whose comparison patch has no defined neighbour at all (spec 4.B
// step 3).
const undefinedComplexity = -1

// boundaryPoint pairs a candidate fill-front pixel with its complexity,
// mirroring the source's vector<pair<int, Coordinates>> edge_points.
type boundaryPoint struct {
	complexity int
	p          raster.Coordinate
}

// boundaryPicker implements spec 4.B: it compacts the fill queue,
// skips islands, scores survivors by complexity, and returns the
// high-complexity half (or all of it, floored at importantCount) for
// this pass.
type boundaryPicker struct {
	dataMask       *raster.Grid[uint8]
	confidence     *raster.Grid[uint8]
	data           *raster.PixelRaster
	transferBelief *raster.Grid[int]
	radius         int
	importantCount int
}

func newBoundaryPicker(dataMask *raster.Grid[uint8], confidence *raster.Grid[uint8], data *raster.PixelRaster, transferBelief *raster.Grid[int], radius, importantCount int) *boundaryPicker {
	return &boundaryPicker{
		dataMask:       dataMask,
		confidence:     confidence,
		data:           data,
		transferBelief: transferBelief,
		radius:         radius,
		importantCount: importantCount,
	}
}

// compact drops every point whose transfer_belief is already >= 0 (i.e.
// already filled), returning the surviving queue in place.
func (b *boundaryPicker) compact(queue []raster.Coordinate) []raster.Coordinate {
	out := queue[:0]
	for _, p := range queue {
		if b.transferBelief.At(p) < 0 {
			out = append(out, p)
		}
	}
	return out
}

// isIsland reports whether none of p's 8-neighbours has a defined
// value yet (confidence > 0), which forces outside-in propagation by
// skipping p for this pass.
func (b *boundaryPicker) isIsland(p raster.Coordinate) bool {
	for _, o := range eightNeighbourOffsets {
		n := p.Add(o)
		if b.confidence.IsInside(n) && b.confidence.At(n) > 0 {
			return false
		}
	}
	return true
}

// complexity computes the structural-complexity heuristic of spec 4.B
// step 3: squared-deviation-of-defined-neighbours times mean-defined-
// confidence, summed over channels, across the (2*radius+1)^2 patch
// centered at p. Returns undefinedComplexity when no neighbour in the
// patch is defined.
//
// This sums then divides to compute the per-channel mean (the source's
// get_complexity instead assigns into the accumulator on every
// iteration, which silently keeps only the last defined neighbour's
// color as the "mean" -- treated here as a bug per the resolved open
// question, not reproduced).
func (b *boundaryPicker) complexity(p raster.Coordinate) int {
	channels := raster.PixelLanes

	var confidenceSum int
	var definedCount int
	var meanSum [raster.PixelLanes]int
	type definedPoint struct {
		pos raster.Coordinate
	}
	defined := make([]definedPoint, 0, (2*b.radius+1)*(2*b.radius+1))

	for oy := -b.radius; oy <= b.radius; oy++ {
		for ox := -b.radius; ox <= b.radius; ox++ {
			n := p.Add(raster.Coordinate{X: ox, Y: oy})
			if !b.confidence.IsInside(n) {
				continue
			}
			conf := b.confidence.At(n)
			if conf == 0 {
				continue
			}
			confidenceSum += int(conf)
			definedCount++
			defined = append(defined, definedPoint{pos: n})
			px := b.data.At(n)
			for c := 0; c < channels; c++ {
				meanSum[c] += int(px[c])
			}
		}
	}

	if definedCount == 0 {
		return undefinedComplexity
	}

	var mean [raster.PixelLanes]int
	for c := 0; c < channels; c++ {
		mean[c] = meanSum[c] / definedCount
	}

	var stddev [raster.PixelLanes]int
	for _, d := range defined {
		px := b.data.At(d.pos)
		for c := 0; c < channels; c++ {
			diff := mean[c] - int(px[c])
			stddev[c] += diff * diff
		}
	}

	result := 0
	for c := 0; c < channels; c++ {
		result += stddev[c]
	}
	result /= definedCount
	result *= confidenceSum / definedCount
	return result
}

// pick implements the full contract of spec 4.B: compact, skip
// islands, score, sort ascending, keep the high-complexity half (never
// fewer than importantCount when that many survive). An empty result
// signals "no further progress possible" to the driver.
func (b *boundaryPicker) pick(queue []raster.Coordinate) ([]raster.Coordinate, []boundaryPoint) {
	queue = b.compact(queue)

	candidates := make([]boundaryPoint, 0, len(queue))
	for _, p := range queue {
		if b.isIsland(p) {
			continue
		}
		candidates = append(candidates, boundaryPoint{complexity: b.complexity(p), p: p})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].complexity < candidates[j].complexity
	})

	if len(candidates) > b.importantCount {
		keepFrom := len(candidates) / 2
		if len(candidates)-keepFrom < b.importantCount {
			keepFrom = len(candidates) - b.importantCount
		}
		candidates = candidates[keepFrom:]
	}

	return queue, candidates
}
