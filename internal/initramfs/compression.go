// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is the compression applied to the complete archive.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

var compressionNames = map[Compression]string{
	CompressionNone: "none",
	CompressionGzip: "gzip",
	CompressionZstd: "zstd",
}

func (c Compression) String() string {
	if name, exists := compressionNames[c]; exists {
		return name
	}

	return fmt.Sprintf("compression(%d)", int(c))
}

// MarshalText implements [encoding.TextMarshaler].
func (c Compression) MarshalText() ([]byte, error) {
	if _, exists := compressionNames[c]; !exists {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, int(c))
	}

	return []byte(c.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (c *Compression) UnmarshalText(text []byte) error {
	for compression, name := range compressionNames {
		if name == string(text) {
			*c = compression
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnknownCompression, text)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// newCompressWriter wraps the given writer with a compressor for the given
// [Compression]. The returned writer must be closed to flush all data. It
// does not close the underlying writer.
func newCompressWriter(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		gzipWriter, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}

		return gzipWriter, nil
	case CompressionZstd:
		zstdWriter, err := zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}

		return zstdWriter, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, compression)
	}
}
