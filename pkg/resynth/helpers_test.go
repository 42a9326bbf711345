package resynth

import "github.com/orvendai/resynth/pkg/raster"

// solidRaster builds a w x h, 3-channel raster where every pixel is
// (r, g, b, 0).
func solidRaster(w, h int, r, g, b uint8) *raster.PixelRaster {
	rs := raster.NewPixelRaster(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := rs.At(raster.Coordinate{X: x, Y: y})
			px[0], px[1], px[2], px[3] = r, g, b, 0
		}
	}
	return rs
}

// emptyMask builds a w x h all-zero mask.
func emptyMask(w, h int) *raster.Grid[uint8] {
	return raster.NewGrid[uint8](w, h)
}

// maskRect sets m[x,y] = 1 for every point in [x0,x1) x [y0,y1).
func maskRect(m *raster.Grid[uint8], x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Set(raster.Coordinate{X: x, Y: y}, 1)
		}
	}
}

// pixelsEqual reports whether a and b carry the same first-three-lane
// color.
func pixelsEqual(a, b []uint8) bool {
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2]
}
