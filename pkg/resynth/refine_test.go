package resynth

import (
	"math/rand"
	"testing"

	"github.com/orvendai/resynth/pkg/raster"
)

// buildFilledSession wires a minimal session over a period-4-in-x
// striped raster (so a patch at one column genuinely recurs at another
// column sharing the same x mod 4). target and its left neighbour are
// both masked; the neighbour already carries an exact-match transfer,
// and propagating its source through the offset between them predicts
// a real match for target too, giving refinePixel's coherence step
// something correct to find.
func buildFilledSession(w, h int) (*session, raster.Coordinate) {
	data := raster.NewPixelRaster(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := data.At(raster.Coordinate{X: x, Y: y})
			v := uint8((x % 4) * 60)
			px[0], px[1], px[2] = v, v, v
		}
	}
	confidence := raster.NewGrid[uint8](w, h)
	confidence.Fill(255)
	dataMask := raster.NewGrid[uint8](w, h)
	transferSource := raster.NewGrid[raster.Coordinate](w, h)
	transferBelief := raster.NewGrid[int](w, h)
	fromReference := raster.NewGrid[bool](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := raster.Coordinate{X: x, Y: y}
			transferSource.Set(p, p)
		}
	}

	target := raster.Coordinate{X: w / 2, Y: h / 2}
	neighbour := target.Add(raster.Coordinate{X: -1, Y: 0})
	goodSource := raster.Coordinate{X: neighbour.X - 4, Y: neighbour.Y} // same x mod 4, one period away
	badSource := raster.Coordinate{X: 0, Y: 0}

	confidence.Set(neighbour, 0)
	confidence.Set(target, 0)
	dataMask.Set(neighbour, 1)
	dataMask.Set(target, 1)
	transferSource.Set(neighbour, goodSource)
	transferBelief.Set(neighbour, 0)
	transferSource.Set(target, badSource)

	cmp := newComparator(data, confidence, 1, 0, false, 3)
	transferBelief.Set(target, worstPossibleScore(cmp))

	s := &session{
		data:           data,
		dataMask:       dataMask,
		reference:      data,
		confidence:     confidence,
		transferSource: transferSource,
		transferBelief: transferBelief,
		fromReference:  fromReference,
		rng:            rand.New(rand.NewSource(1)),
		width:          w,
		height:         h,
		cmp:            cmp,
	}
	return s, target
}

func TestRefinePixelImprovesViaCoherence(t *testing.T) {
	s, target := buildFilledSession(16, 16)
	before := s.transferBelief.At(target)

	improved, _ := s.refinePixel(target)
	if !improved {
		t.Fatal("refinePixel reported no improvement for a deliberately bad source")
	}
	after := s.transferBelief.At(target)
	if after >= before {
		t.Fatalf("transferBelief did not decrease: before=%d after=%d", before, after)
	}
}

func TestRefineStopsEarlyOnConvergence(t *testing.T) {
	w, h := 16, 16
	data := solidRaster(w, h, 40, 40, 40)
	confidence := raster.NewGrid[uint8](w, h)
	confidence.Fill(255)
	dataMask := raster.NewGrid[uint8](w, h)
	transferSource := raster.NewGrid[raster.Coordinate](w, h)
	transferBelief := raster.NewGrid[int](w, h)
	fromReference := raster.NewGrid[bool](w, h)
	var queue []raster.Coordinate
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := raster.Coordinate{X: x, Y: y}
			transferSource.Set(p, p) // every pixel already perfectly matched
			queue = append(queue, p)
		}
	}

	s := &session{
		data:           data,
		dataMask:       dataMask,
		reference:      data,
		confidence:     confidence,
		transferSource: transferSource,
		transferBelief: transferBelief,
		fromReference:  fromReference,
		width:          w,
		height:         h,
		cmp:            newComparator(data, confidence, 1, 0, false, 3),
	}

	sweeps, _ := s.refine(queue, 10)
	if sweeps >= 10 {
		t.Fatalf("refine ran all %d sweeps on an already-converged raster, want early stop", sweeps)
	}
}

func TestReverseCoordinates(t *testing.T) {
	cs := []raster.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	reverseCoordinates(cs)
	want := []raster.Coordinate{{X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	for i := range cs {
		if cs[i] != want[i] {
			t.Fatalf("reverseCoordinates = %v, want %v", cs, want)
		}
	}
}

func TestSourceInside(t *testing.T) {
	w, h := 10, 10
	data := solidRaster(w, h, 0, 0, 0)
	reference := solidRaster(w, h, 0, 0, 0)
	mask := raster.NewGrid[uint8](w, h)
	mask.Set(raster.Coordinate{X: 3, Y: 3}, 1)
	s := &session{data: data, dataMask: mask, reference: reference}

	if s.sourceInside(false, raster.Coordinate{X: 3, Y: 3}) {
		t.Fatal("a masked data point should not be a valid coherence source")
	}
	if !s.sourceInside(false, raster.Coordinate{X: 4, Y: 4}) {
		t.Fatal("an unmasked in-bounds data point should be a valid source")
	}
	if !s.sourceInside(true, raster.Coordinate{X: 0, Y: 0}) {
		t.Fatal("any in-bounds reference point should be a valid source")
	}
	if s.sourceInside(true, raster.Coordinate{X: -1, Y: 0}) {
		t.Fatal("an out-of-bounds reference point should not be a valid source")
	}
}
