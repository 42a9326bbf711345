package resynth

import "github.com/orvendai/resynth/pkg/raster"

// maxLaneDiff is 255^2, the hard per-lane penalty applied when a patch
// offset is defined on the target side only (spec: "only target
// defined"); an offset defined only on the candidate side costs nothing.
const maxLaneDiff = 255 * 255

// patchSource abstracts over the two rasters a candidate patch can be
// drawn from: the working data raster (legacy rectangle sampling,
// coherence propagation, random search all read candidates out of
// data) or the immutable reference raster (reference-layer sampling).
// A data-side point is "defined" when it already carries a usable
// value (confidence > 0); a reference-side point is defined everywhere
// inside the raster, since the reference image is supplied whole by the
// caller and carries no notion of "not yet filled".
type patchSource interface {
	pixelAt(p raster.Coordinate) []uint8
	definedAt(p raster.Coordinate) bool
	insideAt(p raster.Coordinate) bool
}

type dataPatchSource struct {
	pix        *raster.PixelRaster
	confidence *raster.Grid[uint8]
}

func (s dataPatchSource) pixelAt(p raster.Coordinate) []uint8 { return s.pix.At(p) }
func (s dataPatchSource) insideAt(p raster.Coordinate) bool   { return s.pix.IsInside(p) }
func (s dataPatchSource) definedAt(p raster.Coordinate) bool {
	return s.pix.IsInside(p) && s.confidence.At(p) > 0
}

type referencePatchSource struct {
	pix *raster.PixelRaster
}

func (s referencePatchSource) pixelAt(p raster.Coordinate) []uint8 { return s.pix.At(p) }
func (s referencePatchSource) insideAt(p raster.Coordinate) bool   { return s.pix.IsInside(p) }
func (s referencePatchSource) definedAt(p raster.Coordinate) bool  { return s.pix.IsInside(p) }

// colorOffset is the additive per-lane shift applied to a candidate
// patch under the color-adjustment variant (spec 4.C). Lane values are
// zero when color adjustment is disabled.
type colorOffset [raster.PixelLanes]int32

// equalLanes reports whether every lane of o carries the same value,
// the shape equal_adjustment is expected to produce.
func (o colorOffset) equalLanes() bool {
	for i := 1; i < raster.PixelLanes; i++ {
		if o[i] != o[0] {
			return false
		}
	}
	return true
}

// matchResult is the outcome of scoring one candidate patch against one
// target patch.
type matchResult struct {
	score  int
	offset colorOffset
}

// comparator computes patch dissimilarity between a target patch
// (always anchored in the working data raster) and a candidate patch
// (anchored in either the data or the reference raster).
type comparator struct {
	target          dataPatchSource
	radius          int
	maxAdjustment   int32
	equalAdjustment bool
	channels        int
	offsets         []raster.Coordinate // precomputed (2r+1)^2 offsets, far_from_boundary fast path uses the same list
}

func newComparator(data *raster.PixelRaster, confidence *raster.Grid[uint8], radius, maxAdjustment int, equalAdjustment bool, channels int) *comparator {
	offsets := make([]raster.Coordinate, 0, (2*radius+1)*(2*radius+1))
	for oy := -radius; oy <= radius; oy++ {
		for ox := -radius; ox <= radius; ox++ {
			offsets = append(offsets, raster.Coordinate{X: ox, Y: oy})
		}
	}
	return &comparator{
		target:          dataPatchSource{pix: data, confidence: confidence},
		radius:          radius,
		maxAdjustment:   int32(maxAdjustment),
		equalAdjustment: equalAdjustment,
		channels:        channels,
		offsets:         offsets,
	}
}

// farFromBoundary reports whether a full comparison patch around p lies
// entirely inside a w x h raster, letting the hot loop skip per-offset
// bounds checks.
func farFromBoundary(p raster.Coordinate, w, h, radius int) bool {
	return p.X >= radius && p.X < w-radius && p.Y >= radius && p.Y < h-radius
}

// score implements spec 4.C: it returns the dissimilarity between the
// patch at candidate (drawn from src) and the patch at target, along
// with the color offset chosen for the candidate (zero lanes when color
// adjustment is disabled). bestSoFar is an early-exit upper bound; once
// the partial sum has reached or exceeded it the function may return
// bestSoFar immediately. ok is false when the color-adjusted candidate
// would push a lane outside [0, 255]; callers must treat that as a
// rejected candidate (worse than any real score).
func (c *comparator) score(src patchSource, candidate, target raster.Coordinate, bestSoFar int) (matchResult, bool) {
	var offset colorOffset
	if c.maxAdjustment > 0 {
		offset = c.fitColorOffset(src, candidate, target)
	}

	fastTarget := farFromBoundary(target, c.target.pix.Width, c.target.pix.Height, c.radius)
	fastCandidate := c.fastPathFor(src, candidate)

	sum := 0
	for _, o := range c.offsets {
		p := target.Add(o)
		q := candidate.Add(o)

		var targetInside, candInside bool
		if fastTarget {
			targetInside = true
		} else {
			targetInside = c.target.insideAt(p)
		}
		if fastCandidate {
			candInside = true
		} else {
			candInside = src.insideAt(q)
		}

		targetDefined := targetInside && c.target.definedAt(p)
		candDefined := candInside && src.definedAt(q)

		switch {
		case targetDefined && candDefined:
			tp := c.target.pixelAt(p)
			cp := src.pixelAt(q)
			for lane := 0; lane < raster.PixelLanes; lane++ {
				shifted := int32(cp[lane]) + offset[lane]
				if c.maxAdjustment > 0 && (shifted < 0 || shifted > 255) {
					return matchResult{score: bestSoFar}, false
				}
				d := int(tp[lane]) - int(shifted)
				sum += d * d
			}
		case targetDefined && !candDefined:
			sum += maxLaneDiff * raster.PixelLanes
		default:
			// only-candidate-defined or both-undefined: no contribution.
		}

		if sum >= bestSoFar {
			return matchResult{score: bestSoFar, offset: offset}, true
		}
	}
	return matchResult{score: sum, offset: offset}, true
}

// fastPathFor reports whether the full comparison patch around candidate
// lies inside src's raster, so score can skip per-offset bounds checks.
func (c *comparator) fastPathFor(src patchSource, candidate raster.Coordinate) bool {
	switch s := src.(type) {
	case dataPatchSource:
		return farFromBoundary(candidate, s.pix.Width, s.pix.Height, c.radius)
	case referencePatchSource:
		return farFromBoundary(candidate, s.pix.Width, s.pix.Height, c.radius)
	default:
		return false
	}
}

// fitColorOffset implements the first pass of the color-adjustment
// variant: the per-lane mean difference over doubly-defined positions,
// clamped to [-maxAdjustment, +maxAdjustment], and collapsed to a single
// shared value across channels when equalAdjustment is set.
func (c *comparator) fitColorOffset(src patchSource, candidate, target raster.Coordinate) colorOffset {
	var sum [raster.PixelLanes]int64
	var count int64
	for _, o := range c.offsets {
		p := target.Add(o)
		q := candidate.Add(o)
		if !c.target.insideAt(p) || !src.insideAt(q) {
			continue
		}
		if !c.target.definedAt(p) || !src.definedAt(q) {
			continue
		}
		tp := c.target.pixelAt(p)
		cp := src.pixelAt(q)
		for lane := 0; lane < raster.PixelLanes; lane++ {
			sum[lane] += int64(tp[lane]) - int64(cp[lane])
		}
		count++
	}

	var offset colorOffset
	if count == 0 {
		return offset
	}
	for lane := 0; lane < raster.PixelLanes; lane++ {
		mean := sum[lane] / count
		offset[lane] = clampInt32(int32(mean), -c.maxAdjustment, c.maxAdjustment)
	}
	if c.equalAdjustment {
		var total int64
		for lane := 0; lane < c.channels; lane++ {
			total += int64(offset[lane])
		}
		avg := clampInt32(int32(total/int64(c.channels)), -c.maxAdjustment, c.maxAdjustment)
		for lane := 0; lane < raster.PixelLanes; lane++ {
			offset[lane] = avg
		}
	}
	return offset
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
