package display

// Snapshot scaling
const (
	// DefaultPixelScale is the upscaling factor applied to saved snapshots
	DefaultPixelScale = 4
)

// Test pattern constants
const (
	// TestPatternCount is the number of available test patterns
	TestPatternCount = 4
	// TestPatternTileSize is the size of tiles for checkerboard and diagonal patterns
	TestPatternTileSize = 8
	// TestPatternStripeWidth is the width of stripes in the stripe pattern
	TestPatternStripeWidth = 4
	// TestPatternAnimationFrames is the number of frames between test pattern animations
	TestPatternAnimationFrames = 30
	// TestPatternStripeSpeed is the animation speed for stripe patterns
	TestPatternStripeSpeed = 2
	// TestPatternDiagonalSpeed is the animation speed for diagonal patterns
	TestPatternDiagonalSpeed = 4
)

// Shade levels used by the terminal renderer, darkest first
const (
	ShadeBlack = iota
	ShadeDarkGray
	ShadeLightGray
	ShadeWhite
)
