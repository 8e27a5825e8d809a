package video

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameBuffer_CopyTo(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.SetPixel(1, 0, DarkGreyColor)
	fb.SetPixel(0, 1, 0x11223344)

	sink := NewFrameSink(2, 2)
	sink.Submit(fb)
	img := sink.TakeImage()

	assert.Equal(t, color.RGBA{0, 0, 0, 0}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0x4C, 0x4C, 0x4C, 0xFF}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{0x11, 0x22, 0x33, 0x44}, img.RGBAAt(0, 1))
}

func TestFrameSink_Threshold(t *testing.T) {
	tests := []struct {
		name     string
		skip     int
		frames   int
		expected []bool
	}{
		{"default materializes every frame", 0, 3, []bool{true, true, true}},
		{"skip two", 2, 4, []bool{false, true, false, true}},
		{"skip three", 3, 6, []bool{false, false, true, false, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFrameBuffer(4, 4)
			sink := NewFrameSink(4, 4)
			if tt.skip > 0 {
				sink.SetFrameSkip(tt.skip)
			}

			var got []bool
			for i := 0; i < tt.frames; i++ {
				sink.Submit(fb)
				got = append(got, sink.HasNewImage())
				if sink.HasNewImage() {
					sink.TakeImage()
				}
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFrameSink_TakeClearsFlag(t *testing.T) {
	sink := NewFrameSink(1, 1)
	assert.False(t, sink.HasNewImage())

	sink.Submit(NewFrameBuffer(1, 1))
	require.True(t, sink.HasNewImage())
	sink.TakeImage()
	assert.False(t, sink.HasNewImage())
}

func TestFrameSink_ImageIsACopy(t *testing.T) {
	fb := NewFrameBuffer(1, 1)
	fb.SetPixel(0, 0, WhiteColor)
	sink := NewFrameSink(1, 1)
	sink.Submit(fb)
	first := sink.TakeImage()

	fb.SetPixel(0, 0, BlackColor)
	sink.Submit(fb)
	second := sink.TakeImage()

	assert.Equal(t, uint8(0xFF), first.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(0x00), second.RGBAAt(0, 0).R)

	first.SetRGBA(0, 0, color.RGBA{1, 2, 3, 4})
	assert.NotEqual(t, first.RGBAAt(0, 0), sink.TakeImage().RGBAAt(0, 0))
}

func TestFrameSink_SkipChangeAppliesToLaterFrames(t *testing.T) {
	fb := NewFrameBuffer(1, 1)
	sink := NewFrameSink(1, 1)
	sink.SetFrameSkip(3)
	sink.Submit(fb)
	sink.Submit(fb)
	assert.False(t, sink.HasNewImage())

	sink.SetFrameSkip(1)
	assert.Equal(t, 1, sink.FrameSkip())
	sink.Submit(fb)
	assert.True(t, sink.HasNewImage())
}

func TestFrameSink_ResizesToFrame(t *testing.T) {
	sink := NewFrameSink(1, 1)
	sink.Submit(NewFrameBuffer(FramebufferWidth, FramebufferHeight))
	img := sink.TakeImage()
	assert.Equal(t, FramebufferWidth, img.Bounds().Dx())
	assert.Equal(t, FramebufferHeight, img.Bounds().Dy())
}

func TestScale(t *testing.T) {
	fb := NewFrameBuffer(2, 1)
	fb.SetPixel(0, 0, WhiteColor)
	fb.SetPixel(1, 0, BlackColor)
	sink := NewFrameSink(2, 1)
	sink.Submit(fb)
	img := sink.TakeImage()

	scaled := Scale(img, 3)
	require.Equal(t, 6, scaled.Bounds().Dx())
	require.Equal(t, 3, scaled.Bounds().Dy())
	assert.Equal(t, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, scaled.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{0, 0, 0, 0xFF}, scaled.RGBAAt(3, 0))

	assert.Same(t, img, Scale(img, 1))
}
