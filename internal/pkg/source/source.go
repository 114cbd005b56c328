// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package source provides access to partition images, compressed or not.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression is the compression of an image file.
type Compression string

// Supported compressions, detected by file extension.
const (
	None  Compression = ""
	Gzip  Compression = "gzip"
	Zstd  Compression = "zstd"
	XZ    Compression = "xz"
	Bzip2 Compression = "bzip2"
)

var extensions = map[string]Compression{
	".gz":  Gzip,
	".zst": Zstd,
	".xz":  XZ,
	".bz2": Bzip2,
}

// Detect returns the compression of path based on its extension.
func Detect(path string) Compression {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Source is the content of a partition image.
type Source struct {
	path        string
	compression Compression
	size        uint64
}

// Open checks that path is a readable file and measures its content.
//
// Compressed images are decompressed once to find their size.
func Open(path string) (*Source, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !st.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	s := &Source{
		path:        path,
		compression: Detect(path),
	}

	if s.compression == None {
		// fail early on permission problems
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		s.size = uint64(st.Size())

		return s, f.Close()
	}

	r, err := s.Reader()
	if err != nil {
		return nil, err
	}

	defer r.Close() //nolint:errcheck

	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}

	s.size = uint64(n)

	return s, nil
}

// Path returns the image path.
func (s *Source) Path() string {
	return s.path
}

// Compression returns the detected compression.
func (s *Source) Compression() Compression {
	return s.compression
}

// Size returns the size of the (decompressed) content.
func (s *Source) Size() uint64 {
	return s.size
}

// Reader opens the (decompressed) content for reading.
func (s *Source) Reader() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}

	var r io.Reader

	switch s.compression {
	case None:
		return f, nil
	case Gzip:
		var zr *gzip.Reader

		zr, err = gzip.NewReader(f)
		if err == nil {
			return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
		}
	case Zstd:
		var zr *zstd.Decoder

		zr, err = zstd.NewReader(f)
		if err == nil {
			return &readCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), f}}, nil
		}
	case XZ:
		r, err = xz.NewReader(f)
	case Bzip2:
		var zr *bzip2.Reader

		zr, err = bzip2.NewReader(f, &bzip2.ReaderConfig{})
		if err == nil {
			return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
		}
	default:
		err = fmt.Errorf("unsupported compression %q", s.compression)
	}

	if err != nil {
		f.Close() //nolint:errcheck

		return nil, fmt.Errorf("failed to open %s stream %s: %w", s.compression, s.path, err)
	}

	return &readCloser{Reader: r, closers: []io.Closer{f}}, nil
}

type readCloser struct {
	io.Reader

	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var err error

	for _, c := range rc.closers {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}
