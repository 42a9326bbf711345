package resynth

import (
	"math/rand"

	"github.com/orvendai/resynth/pkg/raster"
)

// candidateSampler proposes source locations for the fill pass (spec
// 4.D). It is either backed by a reference-point list (reference-layer
// mode) or by rejection sampling over a pre-clipped selection rectangle
// within the working data raster (legacy mode).
type candidateSampler interface {
	// sample appends up to n candidates to dst and returns the result
	// along with the patchSource they should be compared against.
	sample(rng *rand.Rand, n int, dst []raster.Coordinate) ([]raster.Coordinate, patchSource)
}

// referenceSampler draws uniformly from the immutable reference-point
// list (every pixel in reference_mask that is outside data_mask). When
// n >= len(points) it enumerates the whole list instead of drawing with
// replacement, per spec 4.D.
type referenceSampler struct {
	points []raster.Coordinate
	src    referencePatchSource
}

func newReferenceSampler(points []raster.Coordinate, reference *raster.PixelRaster) *referenceSampler {
	return &referenceSampler{points: points, src: referencePatchSource{pix: reference}}
}

func (s *referenceSampler) sample(rng *rand.Rand, n int, dst []raster.Coordinate) ([]raster.Coordinate, patchSource) {
	if len(s.points) == 0 {
		return dst, s.src
	}
	if n >= len(s.points) {
		dst = append(dst, s.points...)
		return dst, s.src
	}
	for i := 0; i < n; i++ {
		dst = append(dst, s.points[rng.Intn(len(s.points))])
	}
	return dst, s.src
}

// selectionRect is the legacy sampler's pre-clipped rectangle, clipped
// at setup so a full comparison patch around any candidate lies inside
// the raster (spec 4.D): x1 >= radius and x2 <= width-radius, so the
// last candidate column is width-radius-1, and likewise for y.
type selectionRect struct {
	x1, y1, x2, y2 int // half-open: [x1,x2) x [y1,y2)
}

func clipSelectionRect(width, height, x1, y1, x2, y2, radius int) selectionRect {
	if x1 < radius {
		x1 = radius
	}
	if y1 < radius {
		y1 = radius
	}
	if x2 > width-radius {
		x2 = width - radius
	}
	if y2 > height-radius {
		y2 = height - radius
	}
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return selectionRect{x1: x1, y1: y1, x2: x2, y2: y2}
}

func (r selectionRect) empty() bool { return r.x2 <= r.x1 || r.y2 <= r.y1 }

// legacySampler rejection-samples within the selection rectangle,
// rejecting any draw that still lies within data_mask. Worst case is
// O(area / donor-density) per draw; a known weakness when donor
// density is low (spec 4.D).
type legacySampler struct {
	rect     selectionRect
	dataMask *raster.Grid[uint8]
	src      dataPatchSource
	maxTries int
}

func newLegacySampler(rect selectionRect, dataMask *raster.Grid[uint8], data *raster.PixelRaster, confidence *raster.Grid[uint8]) *legacySampler {
	area := (rect.x2 - rect.x1) * (rect.y2 - rect.y1)
	maxTries := area*4 + 64
	return &legacySampler{
		rect:     rect,
		dataMask: dataMask,
		src:      dataPatchSource{pix: data, confidence: confidence},
		maxTries: maxTries,
	}
}

func (s *legacySampler) sample(rng *rand.Rand, n int, dst []raster.Coordinate) ([]raster.Coordinate, patchSource) {
	if s.rect.empty() {
		return dst, s.src
	}
	width := s.rect.x2 - s.rect.x1
	height := s.rect.y2 - s.rect.y1
	for i := 0; i < n; i++ {
		for attempt := 0; attempt < s.maxTries; attempt++ {
			p := raster.Coordinate{
				X: s.rect.x1 + rng.Intn(width),
				Y: s.rect.y1 + rng.Intn(height),
			}
			if s.dataMask.At(p) == 0 {
				dst = append(dst, p)
				break
			}
		}
	}
	return dst, s.src
}
