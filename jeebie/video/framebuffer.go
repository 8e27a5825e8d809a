package video

import "image"

// Screen size of the emulated display.
const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// GBColor is a pixel in 0xRRGGBBAA form.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

// FrameBuffer is the pixel memory the emulated machine draws into.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the specified size.
func NewFrameBuffer(width, height uint) *FrameBuffer {
	return &FrameBuffer{
		width:  width,
		height: height,
		buffer: make([]uint32, width*height),
	}
}

func (fb *FrameBuffer) Width() int  { return int(fb.width) }
func (fb *FrameBuffer) Height() int { return int(fb.height) }

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Fill sets every pixel to color.
func (fb *FrameBuffer) Fill(color GBColor) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// CopyTo converts the whole buffer into dst, which must have the same size.
func (fb *FrameBuffer) CopyTo(dst *image.RGBA) {
	for y := 0; y < int(fb.height); y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < int(fb.width); x++ {
			p := fb.buffer[y*int(fb.width)+x]
			i := x * 4
			row[i] = byte(p >> 24)
			row[i+1] = byte(p >> 16)
			row[i+2] = byte(p >> 8)
			row[i+3] = byte(p)
		}
	}
}
