package video

import (
	"image"
	"image/draw"
)

// FrameSink turns finished frames into images for the UI, materializing
// only one frame out of every skip threshold. It is owned by the host
// goroutine; images leave it as copies.
type FrameSink struct {
	image       *image.RGBA
	hasNewImage bool
	threshold   int
	counter     int
}

// NewFrameSink creates a sink for frames of the given size with a frame
// skip threshold of 1, materializing every frame.
func NewFrameSink(width, height int) *FrameSink {
	return &FrameSink{
		image:     image.NewRGBA(image.Rect(0, 0, width, height)),
		threshold: 1,
	}
}

// SetFrameSkip materializes one frame out of every k from now on. Values
// below 1 mean every frame.
func (s *FrameSink) SetFrameSkip(k int) {
	if k < 1 {
		k = 1
	}
	s.threshold = k
	if s.counter >= k {
		s.counter = 0
	}
}

// FrameSkip returns the current threshold.
func (s *FrameSink) FrameSkip() int {
	return s.threshold
}

// Submit records a finished frame and materializes it when the skip
// counter reaches the threshold.
func (s *FrameSink) Submit(fb *FrameBuffer) {
	s.counter++
	if s.counter < s.threshold {
		return
	}
	s.counter = 0

	if s.image.Rect.Dx() != fb.Width() || s.image.Rect.Dy() != fb.Height() {
		s.image = image.NewRGBA(image.Rect(0, 0, fb.Width(), fb.Height()))
	}
	fb.CopyTo(s.image)
	s.hasNewImage = true
}

// HasNewImage reports whether a frame was materialized since the last
// TakeImage.
func (s *FrameSink) HasNewImage() bool {
	return s.hasNewImage
}

// TakeImage returns a copy of the latest image and clears the new image
// flag.
func (s *FrameSink) TakeImage() *image.RGBA {
	s.hasNewImage = false
	out := image.NewRGBA(s.image.Rect)
	draw.Draw(out, out.Rect, s.image, s.image.Rect.Min, draw.Src)
	return out
}
