package resynth

import (
	"math/rand"

	"github.com/orvendai/resynth/pkg/raster"
)

// fillPass implements spec 4.E: for each boundary pixel, try nearby
// already-filled data pixels in sorted-distance order (the source's
// neighbour search, resynth.cc's sorted_offsets loop; legacy mode
// only), then sample donor candidates, score everything, and transfer
// the best one found.
type fillPass struct {
	cmp     *comparator
	sampler candidateSampler
	fromRef bool
	tries   int

	// localSource backs the neighbour search; it always reads the
	// working data raster, regardless of fromRef, since a nearby
	// already-filled pixel is always a data-raster point.
	localSource   dataPatchSource
	sortedOffsets []raster.Coordinate
	neighbours    int
}

// newFillPass wires a fillPass with its neighbour-search offsets
// precomputed to comparison-patch radius + 1, per resynth.cc's
// sorted_offsets initialization.
func newFillPass(cmp *comparator, sampler candidateSampler, fromRef bool, tries int, data *raster.PixelRaster, confidence *raster.Grid[uint8], radius, neighbours int) *fillPass {
	return &fillPass{
		cmp:           cmp,
		sampler:       sampler,
		fromRef:       fromRef,
		tries:         tries,
		localSource:   dataPatchSource{pix: data, confidence: confidence},
		sortedOffsets: raster.SortedOffsets(radius),
		neighbours:    neighbours,
	}
}

// candidateMatch is the best candidate found for one target pixel.
type candidateMatch struct {
	target    raster.Coordinate
	candidate raster.Coordinate
	fromRef   bool
	result    matchResult
}

// search tries up to f.neighbours nearby already-filled data pixels
// first (legacy mode only), then up to f.tries candidates from
// f.sampler, and returns the
// best one found across both. ok is false only when neither phase
// produced a single usable candidate (spec 7's "no donors" precondition
// should already have ruled this out, but a legacy sampler with a tiny
// donor area can still come up empty on a given call, and a target near
// the edge of the filled region can have no filled neighbours at all).
func (f *fillPass) search(rng *rand.Rand, target raster.Coordinate, scratch []raster.Coordinate, worstScore int) (candidateMatch, int64, bool) {
	bestScore := worstScore
	var best candidateMatch
	found := false
	var compares int64

	seen := 0
	for _, o := range f.sortedOffsets {
		if f.fromRef || seen >= f.neighbours {
			break
		}
		cand := target.Add(o)
		if !f.localSource.insideAt(cand) || !f.localSource.definedAt(cand) {
			continue
		}
		seen++
		res, ok := f.cmp.score(f.localSource, cand, target, bestScore)
		compares++
		if !ok {
			continue
		}
		if !found || res.score < bestScore {
			bestScore = res.score
			best = candidateMatch{target: target, candidate: cand, fromRef: false, result: res}
			found = true
		}
	}

	candidates, src := f.sampler.sample(rng, f.tries, scratch[:0])
	for _, cand := range candidates {
		res, ok := f.cmp.score(src, cand, target, bestScore)
		compares++
		if !ok {
			continue
		}
		if !found || res.score < bestScore {
			bestScore = res.score
			best = candidateMatch{target: target, candidate: cand, fromRef: f.fromRef, result: res}
			found = true
		}
	}
	return best, compares, found
}

// worstPossibleScore is an upper bound no real score can reach: every
// offset penalized at the maximum per-lane, per-offset cost.
func worstPossibleScore(cmp *comparator) int {
	return maxLaneDiff*raster.PixelLanes*len(cmp.offsets) + 1
}

// applyTransfer implements the write rules shared by spec 4.E and 4.F:
// clipped color write, confidence decay, and transfer bookkeeping.
func (s *session) applyTransfer(m candidateMatch) {
	source, sourceConfidence := s.sourceFor(m.fromRef)

	dst := s.data.At(m.target)
	src := source.At(m.candidate)
	for lane := 0; lane < raster.PixelLanes; lane++ {
		v := int32(src[lane]) + m.result.offset[lane]
		dst[lane] = uint8(clampInt32(v, 0, 255))
	}

	var srcConfidence uint8
	if sourceConfidence != nil {
		srcConfidence = sourceConfidence.At(m.candidate)
	} else {
		srcConfidence = 255 // reference pixels are always fully trusted donors
	}
	decayed := int(srcConfidence) - 5
	if decayed < 10 {
		decayed = 10
	}
	s.confidence.Set(m.target, uint8(decayed))
	s.transferSource.Set(m.target, m.candidate)
	s.transferBelief.Set(m.target, m.result.score)
	s.fromReference.Set(m.target, m.fromRef)
}
