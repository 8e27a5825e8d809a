// Package render turns emulated frames into text.
package render

import (
	"image"

	"github.com/valerio/go-jeebie/jeebie/display"
)

// PixelToShade converts a pixel to a shade level from its luminance.
func PixelToShade(r, g, b uint8) int {
	lum := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
	switch {
	case lum < 0x26:
		return display.ShadeBlack
	case lum < 0x72:
		return display.ShadeDarkGray
	case lum < 0xCC:
		return display.ShadeLightGray
	default:
		return display.ShadeWhite
	}
}

// GetHalfBlockChar returns the half-block character drawing two stacked
// pixels in one cell.
func GetHalfBlockChar(topShade, bottomShade int) rune {
	switch {
	case topShade == bottomShade:
		return '█'
	case topShade == display.ShadeWhite:
		return '▄'
	default:
		return '▀'
	}
}

// Shades returns the shade of every pixel of img, row by row.
func Shades(img *image.RGBA) [][]int {
	b := img.Bounds()
	rows := make([][]int, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := make([]int, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			row[x] = PixelToShade(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		}
		rows[y] = row
	}
	return rows
}

// RenderHalfBlocks converts an image to text, two pixel rows per line. A
// missing bottom row on odd heights counts as white.
func RenderHalfBlocks(img *image.RGBA) []string {
	shades := Shades(img)
	height := len(shades)
	if height == 0 {
		return nil
	}
	width := len(shades[0])

	lines := make([]string, (height+1)/2)
	for textRow := range lines {
		line := make([]rune, width)
		for x := 0; x < width; x++ {
			top := shades[textRow*2][x]
			bottom := display.ShadeWhite
			if textRow*2+1 < height {
				bottom = shades[textRow*2+1][x]
			}
			line[x] = GetHalfBlockChar(top, bottom)
		}
		lines[textRow] = string(line)
	}
	return lines
}
