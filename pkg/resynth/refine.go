package resynth

import "github.com/orvendai/resynth/pkg/raster"

// refine implements spec 4.F: up to maxSweeps sweeps over queue,
// alternating scan direction, stopping early the first time a sweep
// makes no improvement. It returns how many sweeps actually ran and how
// many candidate comparisons they cost.
func (s *session) refine(queue []raster.Coordinate, maxSweeps int) (sweepsRun int, compares int64) {
	forward := true
	order := make([]raster.Coordinate, len(queue))
	for i := 0; i < maxSweeps; i++ {
		copy(order, queue)
		if !forward {
			reverseCoordinates(order)
		}

		improvedAny := false
		for _, p := range order {
			if s.dataMask.At(p) == 0 {
				continue // ground truth is never refined
			}
			if s.transferBelief.At(p) < 0 {
				continue // not yet filled
			}
			improved, c := s.refinePixel(p)
			compares += c
			if improved {
				improvedAny = true
			}
		}

		sweepsRun++
		forward = !forward
		if !improvedAny {
			break
		}
	}
	return sweepsRun, compares
}

func reverseCoordinates(cs []raster.Coordinate) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}

// refinePixel runs one coherence-propagation + random-search round for
// a single already-filled pixel p, applying any improving transfer it
// finds immediately so later steps (and later pixels in the same
// sweep) see the improved state.
func (s *session) refinePixel(p raster.Coordinate) (improved bool, compares int64) {
	best := s.transferBelief.At(p)

	// 1. Coherence propagation: for each synthesized neighbour n, try
	// the point n's own source would predict for p (transfer_source[n]
	// shifted by the reverse offset).
	for _, o := range eightNeighbourOffsets {
		n := p.Add(o)
		if !s.dataMask.IsInside(n) || s.dataMask.At(n) == 0 {
			continue
		}
		if s.transferBelief.At(n) < 0 {
			continue // n has no recorded source yet
		}
		fromRefN := s.fromReference.At(n)
		cand := s.transferSource.At(n).Sub(o)
		if !s.sourceInside(fromRefN, cand) {
			continue
		}
		res, ok := s.cmp.score(s.patchSourceFor(fromRefN), cand, p, best)
		compares++
		if ok && res.score < best {
			best = res.score
			s.applyTransfer(candidateMatch{target: p, candidate: cand, fromRef: fromRefN, result: res})
			improved = true
		}
	}

	// 2. Random search: geometrically shrinking jumps around the
	// recorded source, in the same raster that source was drawn from.
	fromRefP := s.fromReference.At(p)
	searchRange := s.width
	if s.height > searchRange {
		searchRange = s.height
	}
	for searchRange > 0 {
		var o raster.Coordinate
		for attempt := 0; attempt < 8; attempt++ {
			o = raster.Coordinate{
				X: s.rng.Intn(2*searchRange+1) - searchRange,
				Y: s.rng.Intn(2*searchRange+1) - searchRange,
			}
			if !o.IsZero() {
				break
			}
		}
		if !o.IsZero() {
			anchor := s.transferSource.At(p).Add(o)
			if s.sourceInside(fromRefP, anchor) {
				res, ok := s.cmp.score(s.patchSourceFor(fromRefP), anchor, p, best)
				compares++
				if ok && res.score < best {
					best = res.score
					s.applyTransfer(candidateMatch{target: p, candidate: anchor, fromRef: fromRefP, result: res})
					improved = true
				}
			}
		}
		searchRange /= 2
	}
	return improved, compares
}

// sourceInside reports whether cand is a usable coherence-propagation
// candidate in the raster fromRef indicates: inside bounds, and (for
// the data raster) outside data_mask, i.e. ground truth; a masked pixel
// is rejected even after it has been filled.
func (s *session) sourceInside(fromRef bool, cand raster.Coordinate) bool {
	if fromRef {
		return s.reference.IsInside(cand)
	}
	return s.data.IsInside(cand) && s.dataMask.At(cand) == 0
}
