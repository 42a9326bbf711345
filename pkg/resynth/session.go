package resynth

import (
	"math/rand"

	"github.com/orvendai/resynth/pkg/raster"
)

// session holds every piece of state a single Resynthesize call needs,
// scoped to that call and passed to each component explicitly -- the
// design notes call for no package-level globals, unlike the source's
// process-wide static state.
type session struct {
	data          *raster.PixelRaster
	dataMask      *raster.Grid[uint8]
	reference     *raster.PixelRaster
	referenceMask *raster.Grid[uint8]

	confidence     *raster.Grid[uint8]
	transferSource *raster.Grid[raster.Coordinate]
	transferBelief *raster.Grid[int]
	// fromReference disambiguates the coordinate space of
	// transferSource: spec 3 describes it as "the Coordinate in data
	// (or reference region) copied from", and since data and reference
	// share the same shape a plain Coordinate can't tell which raster
	// it indexes on its own.
	fromReference *raster.Grid[bool]

	params Params
	rng    *rand.Rand

	cmp     *comparator
	fill    *fillPass
	pick    *boundaryPicker
	referencePoints []raster.Coordinate

	stats Stats

	width, height int
}

func (s *session) sourceFor(fromRef bool) (*raster.PixelRaster, *raster.Grid[uint8]) {
	if fromRef {
		return s.reference, nil
	}
	return s.data, s.confidence
}

func (s *session) patchSourceFor(fromRef bool) patchSource {
	if fromRef {
		return referencePatchSource{pix: s.reference}
	}
	return dataPatchSource{pix: s.data, confidence: s.confidence}
}

// markGroundTruth initializes every pixel with data_mask == 0 to the
// ground-truth invariants of spec 3: confidence 255, transfer_belief 0,
// transfer_source pointing at itself.
func (s *session) markGroundTruth() {
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			p := raster.Coordinate{X: x, Y: y}
			if s.dataMask.At(p) != 0 {
				s.transferBelief.Set(p, -1)
				continue
			}
			s.confidence.Set(p, 255)
			s.transferBelief.Set(p, 0)
			s.transferSource.Set(p, p)
			s.fromReference.Set(p, false)
		}
	}
}

// buildReferencePoints enumerates every pixel that is both in
// reference_mask and outside data_mask (spec 3's reference-point
// list), used as the draw pool for reference-layer sampling.
func (s *session) buildReferencePoints() []raster.Coordinate {
	var points []raster.Coordinate
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			p := raster.Coordinate{X: x, Y: y}
			if s.referenceMask.At(p) != 0 && s.dataMask.At(p) == 0 {
				points = append(points, p)
			}
		}
	}
	return points
}

// buildFillQueue enumerates every pixel with data_mask != 0 (spec 3's
// fill queue).
func (s *session) buildFillQueue() []raster.Coordinate {
	var queue []raster.Coordinate
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			p := raster.Coordinate{X: x, Y: y}
			if s.dataMask.At(p) != 0 {
				queue = append(queue, p)
			}
		}
	}
	return queue
}
