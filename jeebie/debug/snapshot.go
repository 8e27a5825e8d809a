// Package debug holds helpers for inspecting the emulated display.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/valerio/go-jeebie/jeebie/display"
	"github.com/valerio/go-jeebie/jeebie/video"
)

// SnapshotName returns a timestamped PNG file name.
func SnapshotName(baseName string, at time.Time) string {
	return fmt.Sprintf("%s_%s.png", baseName, at.Format("20060102_150405"))
}

// SavePNG writes img enlarged by scale into directory and returns the path
// written. An empty directory means the current one.
func SavePNG(fsys afero.Fs, img *image.RGBA, baseName, directory string, scale int) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no frame available")
	}
	if scale < 1 {
		scale = display.DefaultPixelScale
	}
	if directory != "" {
		if err := fsys.MkdirAll(directory, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	filePath := filepath.Join(directory, SnapshotName(baseName, time.Now()))
	file, err := fsys.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	out := video.Scale(img, scale)
	if err := png.Encode(file, out); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", out.Rect.Dx(), out.Rect.Dy()), "format", "PNG")
	return filePath, nil
}
