package video

import (
	"image"

	"golang.org/x/image/draw"
)

// Scale enlarges img by an integer factor with nearest neighbour sampling,
// keeping pixels sharp.
func Scale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
