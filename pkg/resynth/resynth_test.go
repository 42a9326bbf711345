package resynth

import (
	"context"
	"errors"
	"testing"

	"github.com/orvendai/resynth/pkg/raster"
)

func legacyParams(seed int64) Params {
	p := DefaultParams()
	p.UseReference = false
	p.CompRadius = 2
	p.Tries = 32
	p.Seed = seed
	return p
}

// S1: hole in flat color.
func TestResynthesizeHoleInFlatColor(t *testing.T) {
	w, h := 16, 16
	data := solidRaster(w, h, 128, 128, 128)
	dataMask := emptyMask(w, h)
	maskRect(dataMask, 6, 6, 10, 10)
	reference := solidRaster(w, h, 0, 0, 0)
	referenceMask := emptyMask(w, h)

	result, err := Resynthesize(context.Background(), data, reference, dataMask, referenceMask, legacyParams(1), nil)
	if err != nil {
		t.Fatalf("Resynthesize returned error: %v", err)
	}
	if result.UnfilledCount != 0 {
		t.Fatalf("UnfilledCount = %d, want 0 (fully reachable hole)", result.UnfilledCount)
	}
	for y := 6; y < 10; y++ {
		for x := 6; x < 10; x++ {
			px := data.At(raster.Coordinate{X: x, Y: y})
			if px[0] != 128 || px[1] != 128 || px[2] != 128 {
				t.Fatalf("pixel (%d,%d) = %v, want (128,128,128)", x, y, px[:3])
			}
		}
	}
}

// S2: vertical bar interpolation.
func TestResynthesizeVerticalBar(t *testing.T) {
	w, h := 32, 32
	data := raster.NewPixelRaster(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := data.At(raster.Coordinate{X: x, Y: y})
			if x < 16 {
				px[0], px[1], px[2] = 200, 0, 0
			} else {
				px[0], px[1], px[2] = 0, 0, 200
			}
		}
	}
	dataMask := emptyMask(w, h)
	maskRect(dataMask, 16, 0, 17, h)
	reference := solidRaster(w, h, 0, 0, 0)
	referenceMask := emptyMask(w, h)

	result, err := Resynthesize(context.Background(), data, reference, dataMask, referenceMask, legacyParams(2), nil)
	if err != nil {
		t.Fatalf("Resynthesize returned error: %v", err)
	}
	if result.UnfilledCount != 0 {
		t.Fatalf("UnfilledCount = %d, want 0", result.UnfilledCount)
	}
	for y := 0; y < h; y++ {
		px := data.At(raster.Coordinate{X: 16, Y: y})
		left := px[0] == 200 && px[1] == 0 && px[2] == 0
		right := px[0] == 0 && px[1] == 0 && px[2] == 200
		if !left && !right {
			t.Fatalf("filled pixel (16,%d) = %v, want one of the two source colors", y, px[:3])
		}
	}
}

// S3: reference copy from a checker-patterned donor.
func TestResynthesizeReferenceCopy(t *testing.T) {
	w, h := 10, 10
	data := solidRaster(w, h, 128, 128, 128)
	dataMask := emptyMask(w, h)
	maskRect(dataMask, 3, 3, 7, 7)
	reference := raster.NewPixelRaster(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := reference.At(raster.Coordinate{X: x, Y: y})
			if x%2 == y%2 {
				px[0], px[1], px[2] = 0, 0, 0
			} else {
				px[0], px[1], px[2] = 255, 255, 255
			}
		}
	}
	referenceMask := emptyMask(w, h)
	referenceMask.Fill(1)

	params := DefaultParams()
	params.CompRadius = 1
	params.Seed = 3
	result, err := Resynthesize(context.Background(), data, reference, dataMask, referenceMask, params, nil)
	if err != nil {
		t.Fatalf("Resynthesize returned error: %v", err)
	}
	if result.UnfilledCount != 0 {
		t.Fatalf("UnfilledCount = %d, want 0", result.UnfilledCount)
	}
	for y := 3; y < 7; y++ {
		for x := 3; x < 7; x++ {
			px := data.At(raster.Coordinate{X: x, Y: y})
			black := px[0] == 0 && px[1] == 0 && px[2] == 0
			white := px[0] == 255 && px[1] == 255 && px[2] == 255
			if !black && !white {
				t.Fatalf("filled pixel (%d,%d) = %v, want black or white", x, y, px[:3])
			}
		}
	}
}

// S4: unreachable island forces ring-first fill order, but every
// masked pixel still ends up filled.
func TestResynthesizeUnreachableIsland(t *testing.T) {
	w, h := 8, 8
	data := solidRaster(w, h, 50, 60, 70)
	dataMask := emptyMask(w, h)
	maskRect(dataMask, 3, 3, 6, 6)
	reference := solidRaster(w, h, 0, 0, 0)
	referenceMask := emptyMask(w, h)

	result, err := Resynthesize(context.Background(), data, reference, dataMask, referenceMask, legacyParams(4), nil)
	if err != nil {
		t.Fatalf("Resynthesize returned error: %v", err)
	}
	if result.UnfilledCount != 0 {
		t.Fatalf("UnfilledCount = %d, want 0 (island reachable via ring propagation)", result.UnfilledCount)
	}
	for y := 3; y < 6; y++ {
		for x := 3; x < 6; x++ {
			px := data.At(raster.Coordinate{X: x, Y: y})
			if px[0] != 50 || px[1] != 60 || px[2] != 70 {
				t.Fatalf("filled pixel (%d,%d) = %v, want the surrounding ground-truth color", x, y, px[:3])
			}
		}
	}
}

// S5: cancellation safety.
func TestResynthesizeCancellationLeavesGroundTruthIntact(t *testing.T) {
	w, h := 40, 40
	data := solidRaster(w, h, 30, 40, 50)
	dataMask := emptyMask(w, h)
	maskRect(dataMask, 10, 10, 30, 30)
	reference := solidRaster(w, h, 0, 0, 0)
	referenceMask := emptyMask(w, h)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	progress := func(float64) {
		calls++
		if calls == 1 {
			cancel()
		}
	}

	result, err := Resynthesize(ctx, data, reference, dataMask, referenceMask, legacyParams(5), progress)
	if err != nil {
		t.Fatalf("Resynthesize returned error: %v", err)
	}
	if !result.Cancelled {
		t.Fatal("expected Cancelled = true after cancelling on the first progress callback")
	}

	gt := raster.Coordinate{X: 0, Y: 0}
	px := data.At(gt)
	if px[0] != 30 || px[1] != 40 || px[2] != 50 {
		t.Fatalf("ground-truth pixel mutated after cancellation: %v", px[:3])
	}
}

func TestResynthesizeEmptyMaskIsNoop(t *testing.T) {
	w, h := 8, 8
	data := solidRaster(w, h, 9, 9, 9)
	dataMask := emptyMask(w, h)
	reference := solidRaster(w, h, 0, 0, 0)
	referenceMask := emptyMask(w, h)

	result, err := Resynthesize(context.Background(), data, reference, dataMask, referenceMask, DefaultParams(), nil)
	if err != nil {
		t.Fatalf("Resynthesize returned error: %v", err)
	}
	if result.UnfilledCount != 0 || result.Cancelled {
		t.Fatalf("unexpected result for an empty mask: %+v", result)
	}
}

func TestResynthesizeRejectsChannelMismatch(t *testing.T) {
	data := raster.NewPixelRaster(10, 10, 3)
	reference := raster.NewPixelRaster(10, 10, 1)
	dataMask := emptyMask(10, 10)
	referenceMask := emptyMask(10, 10)

	_, err := Resynthesize(context.Background(), data, reference, dataMask, referenceMask, DefaultParams(), nil)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestResynthesizeRejectsTooSmallRaster(t *testing.T) {
	data := raster.NewPixelRaster(4, 4, 3)
	reference := raster.NewPixelRaster(4, 4, 3)
	dataMask := emptyMask(4, 4)
	maskRect(dataMask, 1, 1, 2, 2)
	referenceMask := emptyMask(4, 4)

	params := DefaultParams()
	params.CompRadius = 3 // requires at least a 7x7 raster
	_, err := Resynthesize(context.Background(), data, reference, dataMask, referenceMask, params, nil)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestResynthesizeRejectsEmptyReferencePool(t *testing.T) {
	w, h := 10, 10
	data := solidRaster(w, h, 1, 1, 1)
	dataMask := emptyMask(w, h)
	maskRect(dataMask, 4, 4, 6, 6)
	reference := solidRaster(w, h, 1, 1, 1)
	referenceMask := emptyMask(w, h) // nothing usable, and UseReference defaults true

	_, err := Resynthesize(context.Background(), data, reference, dataMask, referenceMask, DefaultParams(), nil)
	if !errors.Is(err, ErrNoDonors) {
		t.Fatalf("err = %v, want ErrNoDonors", err)
	}
}
