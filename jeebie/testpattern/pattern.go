package testpattern

import (
	"github.com/valerio/go-jeebie/jeebie/display"
	"github.com/valerio/go-jeebie/jeebie/video"
)

var patternNames = []string{"checkerboard", "gradient", "stripes", "diagonal"}

// PatternName returns the name of the pattern currently drawn.
func (m *Machine) PatternName() string {
	return patternNames[m.pattern]
}

func (m *Machine) drawPattern() {
	anim := int(m.frames / display.TestPatternAnimationFrames)
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			px := mod(x+m.scrollX, video.FramebufferWidth)
			py := mod(y+m.scrollY, video.FramebufferHeight)
			m.frame.SetPixel(uint(x), uint(y), patternColor(m.pattern, px, py, anim))
		}
	}
}

func patternColor(pattern, x, y, anim int) video.GBColor {
	switch pattern {
	case 0:
		if ((x/display.TestPatternTileSize)+(y/display.TestPatternTileSize))%2 == 0 {
			return video.WhiteColor
		}
		return video.BlackColor
	case 1:
		switch x * 4 / video.FramebufferWidth {
		case 0:
			return video.BlackColor
		case 1:
			return video.DarkGreyColor
		case 2:
			return video.LightGreyColor
		default:
			return video.WhiteColor
		}
	case 2:
		if ((x+anim*display.TestPatternStripeSpeed)/display.TestPatternStripeWidth)%2 == 0 {
			return video.WhiteColor
		}
		return video.DarkGreyColor
	default:
		if ((x+y+anim*display.TestPatternDiagonalSpeed)/display.TestPatternTileSize)%2 == 0 {
			return video.LightGreyColor
		}
		return video.DarkGreyColor
	}
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
