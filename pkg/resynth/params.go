package resynth

// Params is the recognized configuration of spec 6. DefaultParams
// returns the documented defaults; Resynthesize replaces a zero or
// negative Tries, CompRadius, InnerPasses, OuterPasses, ImportantCount,
// Neighbours or Threads with its default and uses every other field
// (including a false UseReference) as given.
type Params struct {
	// Tries is the number of random candidates drawn per pixel per
	// fill pass. Must be > 0.
	Tries int

	// CompRadius (R_cmp) is the comparison-patch radius; the patch is
	// (2*CompRadius+1)^2. Typical value 3.
	CompRadius int

	// MaxAdjustment is the per-channel color-adjustment clamp in
	// [0, 255]. Zero disables color adjustment entirely.
	MaxAdjustment int

	// EqualAdjustment collapses the fitted color offset to a single
	// luminance-only shift shared by every lane. Only meaningful when
	// MaxAdjustment > 0.
	EqualAdjustment bool

	// UseReference selects reference-layer sampling (true) or legacy
	// rectangle-rejection sampling (false).
	UseReference bool

	// InnerPasses is the refinement-sweep budget run after each fill
	// pass, over just the pixels that pass filled.
	InnerPasses int

	// OuterPasses is the refinement-sweep budget run once every mask
	// pixel has been filled, over the whole original fill queue.
	OuterPasses int

	// ImportantCount is the floor on how many boundary points a single
	// pick keeps, even when half the candidate list would be smaller.
	ImportantCount int

	// Neighbours caps how many already-filled data pixels near the
	// target, visited in sorted-distance order, are tried before the
	// sampler's random draws. Only legacy mode (UseReference false)
	// runs this neighbour search.
	Neighbours int

	// Threads is the fill-pass worker count setting of spec 5. It is
	// recorded but not read by Resynthesize: the fill pass always runs
	// sequentially on the calling goroutine, whatever its value.
	Threads int

	// SelectionRect is the pre-clip legacy sampling rectangle (only
	// consulted when UseReference is false). A zero value selects the
	// whole raster.
	SelectionRect struct {
		X1, Y1, X2, Y2 int
	}

	// Seed drives the random search and candidate sampling. Seed == 0
	// selects a fixed, deterministic seed rather than a time-based one;
	// a nonzero seed is used as given. Either way a run with the same
	// inputs and Seed is reproducible.
	Seed int64
}

// DefaultParams returns the documented defaults of spec 6.
func DefaultParams() Params {
	return Params{
		Tries:           200,
		CompRadius:      3,
		MaxAdjustment:   0,
		EqualAdjustment: false,
		UseReference:    true,
		InnerPasses:     20,
		OuterPasses:     4,
		ImportantCount:  6,
		Threads:         1,
		Neighbours:      30,
	}
}

// withDefaults fills in zero-valued fields that have a documented
// default, leaving explicit values (including explicit zeros for
// MaxAdjustment, which legitimately means "disabled") untouched.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Tries <= 0 {
		p.Tries = d.Tries
	}
	if p.CompRadius <= 0 {
		p.CompRadius = d.CompRadius
	}
	if p.InnerPasses <= 0 {
		p.InnerPasses = d.InnerPasses
	}
	if p.OuterPasses <= 0 {
		p.OuterPasses = d.OuterPasses
	}
	if p.ImportantCount <= 0 {
		p.ImportantCount = d.ImportantCount
	}
	if p.Neighbours <= 0 {
		p.Neighbours = d.Neighbours
	}
	if p.Threads <= 0 {
		p.Threads = 1
	}
	return p
}

// Stats carries the benchmark-style counters supplemented from the
// original implementation's bench.h (see SPEC_FULL.md §10): how many
// passes ran and how many candidate comparisons were performed, broken
// down by fill vs. refinement.
type Stats struct {
	FillPasses        int
	RefinementSweeps  int
	PixelsFilled      int
	CandidateCompares int64
}

// Result is returned by Resynthesize.
type Result struct {
	// UnfilledCount is the number of masked pixels left unfilled. A
	// positive value indicates the boundary picker ran out of progress
	// before the queue was empty (an unreachable region, spec 7) -- it
	// is reported as part of a successful result, not an error.
	UnfilledCount int

	// Cancelled reports whether the run stopped early because the
	// caller's context was done.
	Cancelled bool

	Stats Stats
}
