package resynth

import (
	"math/rand"
	"testing"

	"github.com/orvendai/resynth/pkg/raster"
)

func TestReferenceSamplerEnumeratesWhenRequestExceedsPool(t *testing.T) {
	reference := solidRaster(10, 10, 1, 2, 3)
	points := []raster.Coordinate{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	s := newReferenceSampler(points, reference)
	rng := rand.New(rand.NewSource(1))

	got, _ := s.sample(rng, 10, nil)
	if len(got) != len(points) {
		t.Fatalf("len(got) = %d, want %d (full enumeration)", len(got), len(points))
	}
}

func TestReferenceSamplerDrawsFromPoolWhenSmallerRequest(t *testing.T) {
	reference := solidRaster(10, 10, 1, 2, 3)
	points := []raster.Coordinate{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	s := newReferenceSampler(points, reference)
	rng := rand.New(rand.NewSource(1))

	got, _ := s.sample(rng, 2, nil)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	for _, p := range got {
		found := false
		for _, want := range points {
			if p == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("sample returned %v, not a member of the reference-point pool", p)
		}
	}
}

func TestClipSelectionRectRespectsRadius(t *testing.T) {
	r := clipSelectionRect(20, 20, 0, 0, 20, 20, 3)
	if r.x1 != 3 || r.y1 != 3 || r.x2 != 17 || r.y2 != 17 {
		t.Fatalf("clipSelectionRect = %+v, want a 3-pixel margin on every side", r)
	}
}

func TestClipSelectionRectCollapsesWhenTooSmall(t *testing.T) {
	r := clipSelectionRect(5, 5, 0, 0, 5, 5, 3)
	if !r.empty() {
		t.Fatalf("clipSelectionRect(%+v) should collapse to empty when the raster is smaller than 2*radius+1", r)
	}
}

func TestLegacySamplerRejectsMaskedPoints(t *testing.T) {
	w, h := 20, 20
	data := solidRaster(w, h, 5, 5, 5)
	confidence := raster.NewGrid[uint8](w, h)
	confidence.Fill(255)
	mask := raster.NewGrid[uint8](w, h)
	maskRect(mask, 8, 8, 12, 12)
	rect := clipSelectionRect(w, h, 0, 0, w, h, 1)
	s := newLegacySampler(rect, mask, data, confidence)
	rng := rand.New(rand.NewSource(7))

	got, _ := s.sample(rng, 50, nil)
	for _, p := range got {
		if mask.At(p) != 0 {
			t.Fatalf("legacySampler returned masked point %v", p)
		}
	}
}
