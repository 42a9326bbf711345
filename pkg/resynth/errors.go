package resynth

import "errors"

// Sentinel errors for the pre-flight checks of spec 7. All are eager
// failures raised before any pass runs; no error is recoverable once a
// pass has started, since a violated invariant past that point is a
// bug rather than a runtime condition.
var (
	// ErrInvalidGeometry covers channel-count mismatches, zero-area
	// rasters, and rasters smaller than 2*CompRadius+1 in either
	// dimension.
	ErrInvalidGeometry = errors.New("resynth: invalid geometry")

	// ErrNoDonors is returned when the reference-point list is empty
	// and the legacy selection rectangle is also empty: there is
	// nowhere to draw a candidate from.
	ErrNoDonors = errors.New("resynth: no donor pixels available")
)
