// Package resynth implements the core patch-based image resynthesis
// algorithm: greedy boundary-inward fill, PatchMatch-style coherence
// propagation and random search, a complexity-weighted boundary
// priority heuristic, and an optional per-patch color adjustment.
//
// The package owns no process-wide state; every call to Resynthesize
// builds a fresh, call-scoped session and hands it to each component.
package resynth

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/orvendai/resynth/pkg/raster"
)

// Resynthesize fills every masked pixel of data in place, drawing
// donor content from reference (when params.UseReference) or from the
// rest of data (legacy mode), and returns once the mask is fully
// consumed, progress stalls on an unreachable region, or ctx is
// cancelled.
//
// data is mutated in place; dataMask, reference, and referenceMask are
// read-only. progress, when non-nil, is invoked with a value in [0, 1]
// at pass boundaries only.
func Resynthesize(ctx context.Context, data, reference *raster.PixelRaster, dataMask, referenceMask *raster.Grid[uint8], params Params, progress func(float64)) (Result, error) {
	if err := validateGeometry(data, reference, dataMask, referenceMask, params); err != nil {
		return Result{}, err
	}

	totalMasked := countMasked(dataMask)
	if totalMasked == 0 {
		return Result{}, nil
	}

	params = params.withDefaults()
	s := newSession(data, reference, dataMask, referenceMask, params)

	if params.UseReference {
		s.referencePoints = s.buildReferencePoints()
		if len(s.referencePoints) == 0 {
			return Result{}, fmt.Errorf("%w: reference-point list is empty", ErrNoDonors)
		}
		s.fill = newFillPass(s.cmp, newReferenceSampler(s.referencePoints, reference), true, params.Tries, data, s.confidence, params.CompRadius, params.Neighbours)
	} else {
		rect := params.SelectionRect
		x1, y1, x2, y2 := rect.X1, rect.Y1, rect.X2, rect.Y2
		if x2 <= x1 || y2 <= y1 {
			x1, y1, x2, y2 = 0, 0, s.width, s.height
		}
		clipped := clipSelectionRect(s.width, s.height, x1, y1, x2, y2, params.CompRadius)
		if clipped.empty() {
			return Result{}, fmt.Errorf("%w: legacy selection rectangle is empty", ErrNoDonors)
		}
		s.fill = newFillPass(s.cmp, newLegacySampler(clipped, dataMask, data, s.confidence), false, params.Tries, data, s.confidence, params.CompRadius, params.Neighbours)
	}

	queue := s.buildFillQueue()
	worst := worstPossibleScore(s.cmp)
	scratch := make([]raster.Coordinate, 0, params.Tries)

	for len(queue) > 0 {
		if cancelled(ctx) {
			return s.finish(true), nil
		}

		var candidates []boundaryPoint
		queue, candidates = s.pick.pick(queue)
		if len(candidates) == 0 {
			break // unreachable region: boundary picker made no progress
		}

		justFilled := make([]raster.Coordinate, 0, len(candidates))
		for _, bp := range candidates {
			if s.confidence.At(bp.p) > 0 {
				continue // filled by a coherence jump earlier this pass
			}
			match, compares, found := s.fill.search(s.rng, bp.p, scratch, worst)
			s.stats.CandidateCompares += compares
			if !found {
				continue
			}
			s.applyTransfer(match)
			s.stats.PixelsFilled++
			justFilled = append(justFilled, bp.p)
		}
		s.stats.FillPasses++

		sweeps, compares := s.refine(justFilled, params.InnerPasses)
		s.stats.RefinementSweeps += sweeps
		s.stats.CandidateCompares += compares

		if progress != nil {
			progress(float64(totalMasked-countUnfilled(s.dataMask, s.confidence)) / float64(totalMasked))
		}
	}

	if !cancelled(ctx) {
		sweeps, compares := s.refine(s.buildFillQueue(), params.OuterPasses)
		s.stats.RefinementSweeps += sweeps
		s.stats.CandidateCompares += compares
	}

	if progress != nil {
		progress(1.0)
	}

	return s.finish(false), nil
}

// seededRand: seed == 0 selects a fixed, nonzero seed so a default run
// is reproducible.
func seededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

func cancelled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func newSession(data, reference *raster.PixelRaster, dataMask, referenceMask *raster.Grid[uint8], params Params) *session {
	w, h := data.Width, data.Height
	s := &session{
		data:           data,
		dataMask:       dataMask,
		reference:      reference,
		referenceMask:  referenceMask,
		confidence:     raster.NewGrid[uint8](w, h),
		transferSource: raster.NewGrid[raster.Coordinate](w, h),
		transferBelief: raster.NewGrid[int](w, h),
		fromReference:  raster.NewGrid[bool](w, h),
		params:         params,
		rng:            seededRand(params.Seed),
		width:          w,
		height:         h,
	}
	s.markGroundTruth()
	s.cmp = newComparator(data, s.confidence, params.CompRadius, params.MaxAdjustment, params.EqualAdjustment, data.Channels)
	s.pick = newBoundaryPicker(dataMask, s.confidence, data, s.transferBelief, params.CompRadius, params.ImportantCount)
	return s
}

func (s *session) finish(cancelledRun bool) Result {
	return Result{
		UnfilledCount: countUnfilled(s.dataMask, s.confidence),
		Cancelled:     cancelledRun,
		Stats:         s.stats,
	}
}

func countMasked(mask *raster.Grid[uint8]) int {
	n := 0
	for _, v := range mask.Values {
		if v != 0 {
			n++
		}
	}
	return n
}

func countUnfilled(mask *raster.Grid[uint8], confidence *raster.Grid[uint8]) int {
	n := 0
	for i, v := range mask.Values {
		if v != 0 && confidence.Values[i] == 0 {
			n++
		}
	}
	return n
}

func validateGeometry(data, reference *raster.PixelRaster, dataMask, referenceMask *raster.Grid[uint8], params Params) error {
	radius := params.CompRadius
	if radius <= 0 {
		radius = DefaultParams().CompRadius
	}
	minSide := 2*radius + 1

	if data == nil || reference == nil || dataMask == nil || referenceMask == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidGeometry)
	}
	if data.Width <= 0 || data.Height <= 0 {
		return fmt.Errorf("%w: zero-area raster", ErrInvalidGeometry)
	}
	if data.Width < minSide || data.Height < minSide {
		return fmt.Errorf("%w: raster smaller than comparison patch (%dx%d < %d)", ErrInvalidGeometry, data.Width, data.Height, minSide)
	}
	if data.Channels != reference.Channels {
		return fmt.Errorf("%w: channel-count mismatch (data=%d, reference=%d)", ErrInvalidGeometry, data.Channels, reference.Channels)
	}
	if data.Channels != 1 && data.Channels != 3 && data.Channels != 4 {
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidGeometry, data.Channels)
	}
	dims := [][2]int{
		{reference.Width, reference.Height},
		{dataMask.Width, dataMask.Height},
		{referenceMask.Width, referenceMask.Height},
	}
	for _, d := range dims {
		if d[0] != data.Width || d[1] != data.Height {
			return fmt.Errorf("%w: raster size mismatch", ErrInvalidGeometry)
		}
	}
	return nil
}
