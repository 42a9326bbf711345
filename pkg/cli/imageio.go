package cli

import (
	"image"
	"image/color"

	"github.com/orvendai/resynth/pkg/raster"
	"github.com/orvendai/resynth/pkg/stdimg"
)

// RasterFromImage converts a decoded image.Image into a 3-channel
// PixelRaster (alpha, if any, is dropped; masks are tracked as
// separate single-channel rasters via MaskFromImage).
func RasterFromImage(img image.Image) *raster.PixelRaster {
	n := stdimg.ToNRGBA(img)
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	out := raster.NewPixelRaster(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			srcOff := n.PixOffset(b.Min.X+x, b.Min.Y+y)
			px := out.At(raster.Coordinate{X: x, Y: y})
			px[0] = n.Pix[srcOff+0]
			px[1] = n.Pix[srcOff+1]
			px[2] = n.Pix[srcOff+2]
		}
	}
	return out
}

// ImageFromRaster renders a PixelRaster back into an *image.NRGBA,
// opaque regardless of the raster's channel count (resynthesized
// output carries no alpha channel of its own).
func ImageFromRaster(r *raster.PixelRaster) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			px := r.At(raster.Coordinate{X: x, Y: y})
			dstOff := out.PixOffset(x, y)
			switch r.Channels {
			case 1:
				out.Pix[dstOff+0] = px[0]
				out.Pix[dstOff+1] = px[0]
				out.Pix[dstOff+2] = px[0]
			default:
				out.Pix[dstOff+0] = px[0]
				out.Pix[dstOff+1] = px[1]
				out.Pix[dstOff+2] = px[2]
			}
			out.Pix[dstOff+3] = 255
		}
	}
	return out
}

// MaskFromImage builds a binary selection grid from an image.Image: a
// pixel is considered selected (masked-for-fill or masked-as-donor,
// depending on the caller) when its luminance clears the midpoint,
// matching the convention of a white-on-black hand-painted mask.
func MaskFromImage(img image.Image) *raster.Grid[uint8] {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := raster.NewGrid[uint8](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y >= 128 {
				out.Set(raster.Coordinate{X: x, Y: y}, 1)
			}
		}
	}
	return out
}

// fullMask returns a grid with every cell set to 1, the reference_mask
// convention for "every reference pixel is an eligible donor" when the
// caller supplies no explicit reference mask.
func fullMask(w, h int) *raster.Grid[uint8] {
	g := raster.NewGrid[uint8](w, h)
	g.Fill(1)
	return g
}
