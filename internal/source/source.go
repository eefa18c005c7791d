// Package source opens an RDB snapshot file and transparently unwraps any
// whole-file compression envelope before the decoder sees the first byte of
// the stream.
package source

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Open opens path and returns a reader over its (possibly decompressed)
// contents along with a closer that releases every resource Open acquired.
// The compression envelope is sniffed from the file extension: ".gz" uses
// gzip, ".zst"/".zstd" uses zstd, ".lz4" uses the LZ4 frame format; anything
// else is assumed to be a bare snapshot. Grounded on the teacher's
// handleZstdBlob/handleLZ4Blob (internal/replica/rdb_parser.go), repurposed
// here for outer-envelope decompression rather than mid-stream framing.
func Open(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("source: failed to open %q: %w", path, err)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("source: failed to open gzip envelope: %w", err)
		}
		return zr, closerFunc(func() error {
			zErr := zr.Close()
			fErr := f.Close()
			if zErr != nil {
				return zErr
			}
			return fErr
		}), nil

	case strings.HasSuffix(path, ".zst") || strings.HasSuffix(path, ".zstd"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("source: failed to open zstd envelope: %w", err)
		}
		return zr.IOReadCloser(), closerFunc(func() error {
			zr.Close()
			return f.Close()
		}), nil

	case strings.HasSuffix(path, ".lz4"):
		lr := lz4.NewReader(f)
		return lr, f, nil

	default:
		return f, f, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
