package romloader

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
	"github.com/spf13/afero"
)

// openSized opens path for random access and reports its size, which the
// zip and 7z readers need up front.
func openSized(fsys afero.Fs, path string) (afero.File, int64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// firstProgram reads the first regular entry with a program extension. Zip
// and 7z readers share this file list shape.
func firstProgram[F interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}](files []F, nameOf func(F) string, extensions []string) (string, []byte, error) {
	for _, f := range files {
		if f.FileInfo().IsDir() || !hasExtension(nameOf(f), extensions) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, fmt.Errorf("open %s: %w", nameOf(f), err)
		}
		data, err := readLimited(rc)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", nameOf(f), err)
		}
		return nameOf(f), data, nil
	}
	return "", nil, ErrNoProgram
}

func fromZIP(fsys afero.Fs, path string, extensions []string) (string, []byte, error) {
	f, size, err := openSized(fsys, path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	r, err := zip.NewReader(f, size)
	if err != nil {
		return "", nil, err
	}
	return firstProgram(r.File, func(f *zip.File) string { return f.Name }, extensions)
}

func from7z(fsys afero.Fs, path string, extensions []string) (string, []byte, error) {
	f, size, err := openSized(fsys, path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return "", nil, err
	}
	return firstProgram(r.File, func(f *sevenzip.File) string { return f.Name }, extensions)
}

// fromRAR reads single volume archives only.
func fromRAR(fsys afero.Fs, path string, extensions []string) (string, []byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	r, err := rardecode.NewReader(f)
	if err != nil {
		return "", nil, err
	}

	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			return "", nil, ErrNoProgram
		}
		if err != nil {
			return "", nil, err
		}
		if header.IsDir || !hasExtension(header.Name, extensions) {
			continue
		}
		data, err := readLimited(r)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", header.Name, err)
		}
		return header.Name, data, nil
	}
}

// fromGzip treats the whole decompressed stream as the program, named after
// the archive without its .gz suffix.
func fromGzip(fsys afero.Fs, path string) (string, []byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return "", nil, err
	}
	defer gr.Close()

	data, err := readLimited(gr)
	if err != nil {
		return "", nil, err
	}
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-len(".gz")]
	}
	return name, data, nil
}

func fromTarGzip(fsys afero.Fs, path string, extensions []string) (string, []byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return "", nil, err
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return "", nil, ErrNoProgram
		}
		if err != nil {
			return "", nil, err
		}
		if header.Typeflag != tar.TypeReg || !hasExtension(header.Name, extensions) {
			continue
		}
		data, err := readLimited(tr)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", header.Name, err)
		}
		return header.Name, data, nil
	}
}
