// Package romloader turns whatever the user picked into a plain program file
// the machine can load. Archives are unpacked into a cache directory; the
// staged file keeps the inner file name so save data is keyed by the program
// rather than by the archive.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MaxProgramSize bounds how much is read out of an archive entry.
const MaxProgramSize = 8 << 20

// DefaultExtensions are the program file extensions looked for in archives.
var DefaultExtensions = []string{".gb", ".gbc"}

var (
	ErrNoProgram   = errors.New("no program file found in archive")
	ErrTooLarge    = errors.New("program exceeds maximum size")
	ErrUnsupported = errors.New("unsupported archive format")
)

type format int

const (
	formatPlain format = iota
	formatZIP
	format7z
	formatGzip
	formatTarGzip
	formatRAR
)

var signatures = []struct {
	magic  []byte
	format format
}{
	{[]byte("PK\x03\x04"), formatZIP},
	{[]byte("PK\x05\x06"), formatZIP},
	{[]byte("7z\xBC\xAF\x27\x1C"), format7z},
	{[]byte("Rar!"), formatRAR},
	{[]byte{0x1F, 0x8B}, formatGzip},
}

// Stager stages programs into a cache directory. Archives are read from and
// extracted to Fs.
type Stager struct {
	Fs         afero.Fs
	CacheDir   string
	Extensions []string
}

// NewStager creates a stager on fsys, or on the OS filesystem when fsys is
// nil.
func NewStager(fsys afero.Fs, cacheDir string) *Stager {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Stager{Fs: fsys, CacheDir: cacheDir, Extensions: DefaultExtensions}
}

// Stage returns a path to a plain program file for path. Plain files are
// returned unchanged; archives are extracted and the extracted path is
// returned.
func (s *Stager) Stage(path string) (string, error) {
	f, err := detect(s.Fs, path)
	if err != nil {
		return "", err
	}
	if f == formatPlain {
		return path, nil
	}

	var (
		name string
		data []byte
	)
	switch f {
	case formatZIP:
		name, data, err = fromZIP(s.Fs, path, s.Extensions)
	case format7z:
		name, data, err = from7z(s.Fs, path, s.Extensions)
	case formatRAR:
		name, data, err = fromRAR(s.Fs, path, s.Extensions)
	case formatGzip:
		name, data, err = fromGzip(s.Fs, path)
	case formatTarGzip:
		name, data, err = fromTarGzip(s.Fs, path, s.Extensions)
	default:
		err = ErrUnsupported
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}

	if err := s.Fs.MkdirAll(s.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	staged := filepath.Join(s.CacheDir, filepath.Base(name))
	if err := afero.WriteFile(s.Fs, staged, data, 0o644); err != nil {
		return "", fmt.Errorf("write staged program: %w", err)
	}
	slog.Info("Staged program from archive", "archive", path, "program", staged, "size", len(data))
	return staged, nil
}

func detect(fsys afero.Fs, path string) (format, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return formatPlain, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return formatPlain, fmt.Errorf("read %s: %w", path, err)
	}
	header = header[:n]

	for _, sig := range signatures {
		if !bytes.HasPrefix(header, sig.magic) {
			continue
		}
		lower := strings.ToLower(path)
		if sig.format == formatGzip && (strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz")) {
			return formatTarGzip, nil
		}
		return sig.format, nil
	}
	return formatPlain, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxProgramSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxProgramSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
