package resynth

import (
	"testing"

	"github.com/orvendai/resynth/pkg/raster"
)

func TestComparatorScoreIdenticalPatchesIsZero(t *testing.T) {
	data := solidRaster(12, 12, 50, 60, 70)
	confidence := raster.NewGrid[uint8](12, 12)
	confidence.Fill(255)
	cmp := newComparator(data, confidence, 2, 0, false, 3)
	src := dataPatchSource{pix: data, confidence: confidence}

	res, ok := cmp.score(src, raster.Coordinate{X: 5, Y: 5}, raster.Coordinate{X: 6, Y: 6}, worstPossibleScore(cmp))
	if !ok {
		t.Fatal("score rejected an identical-patch candidate")
	}
	if res.score != 0 {
		t.Fatalf("score = %d, want 0 for identical flat patches", res.score)
	}
}

func TestComparatorScorePenalizesDifference(t *testing.T) {
	data := raster.NewPixelRaster(12, 12, 3)
	confidence := raster.NewGrid[uint8](12, 12)
	confidence.Fill(255)
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			px := data.At(raster.Coordinate{X: x, Y: y})
			if x < 6 {
				px[0] = 10
			} else {
				px[0] = 200
			}
		}
	}
	cmp := newComparator(data, confidence, 1, 0, false, 3)
	src := dataPatchSource{pix: data, confidence: confidence}

	same, _ := cmp.score(src, raster.Coordinate{X: 2, Y: 6}, raster.Coordinate{X: 3, Y: 6}, worstPossibleScore(cmp))
	diff, _ := cmp.score(src, raster.Coordinate{X: 8, Y: 6}, raster.Coordinate{X: 3, Y: 6}, worstPossibleScore(cmp))
	if diff.score <= same.score {
		t.Fatalf("cross-edge candidate scored %d, same-side candidate scored %d; expected cross-edge worse", diff.score, same.score)
	}
}

func TestComparatorScoreEarlyExit(t *testing.T) {
	data := solidRaster(12, 12, 1, 1, 1)
	// One differing pixel lies in both patches, so the full score would
	// be 2*199^2; the partial sum passes the bound of 1 well before that.
	data.At(raster.Coordinate{X: 5, Y: 5})[0] = 200
	confidence := raster.NewGrid[uint8](12, 12)
	confidence.Fill(255)
	cmp := newComparator(data, confidence, 3, 0, false, 3)
	src := dataPatchSource{pix: data, confidence: confidence}

	res, ok := cmp.score(src, raster.Coordinate{X: 5, Y: 5}, raster.Coordinate{X: 6, Y: 6}, 1)
	if !ok {
		t.Fatal("score rejected a candidate with color adjustment disabled")
	}
	if res.score != 1 {
		t.Fatalf("score = %d, want the early-exit bound 1", res.score)
	}
}

func TestFitColorOffsetClampsToMaxAdjustment(t *testing.T) {
	data := raster.NewPixelRaster(10, 10, 3)
	confidence := raster.NewGrid[uint8](10, 10)
	confidence.Fill(255)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			px := data.At(raster.Coordinate{X: x, Y: y})
			px[0], px[1], px[2] = 0, 0, 0
		}
	}
	// The candidate patch is uniformly brighter by 100 in every lane;
	// a maxAdjustment of 10 must clamp the fitted offset.
	candData := raster.NewPixelRaster(10, 10, 3)
	candConfidence := raster.NewGrid[uint8](10, 10)
	candConfidence.Fill(255)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			px := candData.At(raster.Coordinate{X: x, Y: y})
			px[0], px[1], px[2] = 100, 100, 100
		}
	}

	cmp := newComparator(data, confidence, 2, 10, false, 3)
	src := dataPatchSource{pix: candData, confidence: candConfidence}
	offset := cmp.fitColorOffset(src, raster.Coordinate{X: 5, Y: 5}, raster.Coordinate{X: 5, Y: 5})
	for lane := 0; lane < 3; lane++ {
		if offset[lane] != -10 {
			t.Fatalf("offset[%d] = %d, want -10 (clamped)", lane, offset[lane])
		}
	}
}

func TestFitColorOffsetEqualAdjustmentCollapsesLanes(t *testing.T) {
	data := raster.NewPixelRaster(10, 10, 3)
	confidence := raster.NewGrid[uint8](10, 10)
	confidence.Fill(255)
	candData := raster.NewPixelRaster(10, 10, 3)
	candConfidence := raster.NewGrid[uint8](10, 10)
	candConfidence.Fill(255)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			dp := data.At(raster.Coordinate{X: x, Y: y})
			dp[0], dp[1], dp[2] = 100, 80, 60
			cp := candData.At(raster.Coordinate{X: x, Y: y})
			cp[0], cp[1], cp[2] = 0, 0, 0
		}
	}

	cmp := newComparator(data, confidence, 2, 100, true, 3)
	src := dataPatchSource{pix: candData, confidence: candConfidence}
	offset := cmp.fitColorOffset(src, raster.Coordinate{X: 5, Y: 5}, raster.Coordinate{X: 5, Y: 5})
	if !offset.equalLanes() {
		t.Fatalf("equal_adjustment offset %v has unequal lanes", offset)
	}

	cmpUnequal := newComparator(data, confidence, 2, 100, false, 3)
	offsetUnequal := cmpUnequal.fitColorOffset(src, raster.Coordinate{X: 5, Y: 5}, raster.Coordinate{X: 5, Y: 5})
	if offsetUnequal.equalLanes() {
		t.Fatal("expected unequal per-lane offsets with equal_adjustment disabled and differing channel means")
	}
}

func TestFarFromBoundary(t *testing.T) {
	if !farFromBoundary(raster.Coordinate{X: 5, Y: 5}, 10, 10, 2) {
		t.Fatal("(5,5) in a 10x10 raster should be far from the boundary at radius 2")
	}
	if farFromBoundary(raster.Coordinate{X: 1, Y: 5}, 10, 10, 2) {
		t.Fatal("(1,5) should not be far from the boundary at radius 2")
	}
}
