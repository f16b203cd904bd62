package utils

import (
	"archive/zip"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode/v2"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

// MaxROMSize caps how much a single dump may unpack to.
const MaxROMSize = 1 << 30

var errNoFile = errors.New("archive holds no files")

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// OpenROM opens a dump for reading. Archives (.zip, .7z, .rar) yield their
// first file; compressed streams (.gz, .xz, .lz4, .zst) are unpacked.
func OpenROM(fs afero.Fs, filename string) (io.ReadCloser, error) {
	file, err := fs.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}

	rc, err := unpack(file, filename)
	if err != nil {
		file.Close()
		return nil, err
	}
	return rc, nil
}

func unpack(file afero.File, filename string) (io.ReadCloser, error) {
	wrap := func(r io.Reader, closers ...io.Closer) io.ReadCloser {
		return &readCloser{Reader: r, closers: append([]io.Closer{file}, closers...)}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip":
		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat zip file %s: %w", filename, err)
		}
		zr, err := zip.NewReader(file, info.Size())
		if err != nil {
			return nil, fmt.Errorf("failed to open zip file %s: %w", filename, err)
		}
		zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
			return flate.NewReader(r)
		})
		for _, f := range zr.File {
			if f.FileInfo().IsDir() {
				continue
			}
			r, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open file %s within zip: %w", f.Name, err)
			}
			return wrap(r, r), nil
		}
		return nil, fmt.Errorf("zip file %s: %w", filename, errNoFile)

	case ".7z":
		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat 7z file %s: %w", filename, err)
		}
		sr, err := sevenzip.NewReader(file, info.Size())
		if err != nil {
			return nil, fmt.Errorf("failed to open 7z file %s: %w", filename, err)
		}
		for _, f := range sr.File {
			if f.FileInfo().IsDir() {
				continue
			}
			r, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open file %s within 7z: %w", f.Name, err)
			}
			return wrap(r, r), nil
		}
		return nil, fmt.Errorf("7z file %s: %w", filename, errNoFile)

	case ".rar":
		rr, err := rardecode.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open rar file %s: %w", filename, err)
		}
		for {
			hdr, err := rr.Next()
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("rar file %s: %w", filename, errNoFile)
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read rar file %s: %w", filename, err)
			}
			if !hdr.IsDir {
				return wrap(rr), nil
			}
		}

	case ".gz":
		gr, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip file %s: %w", filename, err)
		}
		return wrap(gr, gr), nil

	case ".zst":
		zr, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd file %s: %w", filename, err)
		}
		return wrap(zr, closerFunc(func() error { zr.Close(); return nil })), nil

	case ".xz":
		xr, err := xz.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open xz file %s: %w", filename, err)
		}
		return wrap(xr), nil

	case ".lz4":
		return wrap(lz4.NewReader(file)), nil
	}

	return wrap(file), nil
}

// LoadROM reads a whole dump into memory.
func LoadROM(fs afero.Fs, filename string) ([]byte, error) {
	rc, err := OpenROM(fs, filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, MaxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(b) > MaxROMSize {
		return nil, fmt.Errorf("%s unpacks to more than %d bytes", filename, MaxROMSize)
	}
	return b, nil
}

// ReadHead reads the first n bytes of a dump without loading the rest.
func ReadHead(fs afero.Fs, filename string, n int) ([]byte, error) {
	rc, err := OpenROM(fs, filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, n)
	if _, err := io.ReadFull(rc, buf); err != nil {
		return nil, fmt.Errorf("failed to read %d bytes from %s: %w", n, filename, err)
	}
	return buf, nil
}

// CalculateHash computes the SHA-1 of a dump's contents as a hex string.
func CalculateHash(rom []byte) string {
	return fmt.Sprintf("%x", sha1.Sum(rom))
}

// CalculateFileHash computes the SHA-1 of a dump, or of the first file in
// an archive.
func CalculateFileHash(fs afero.Fs, filename string) (string, error) {
	rc, err := OpenROM(fs, filename)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	hasher := sha1.New()
	if _, err := io.Copy(hasher, rc); err != nil {
		return "", fmt.Errorf("failed to calculate hash for %s: %w", filename, err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
