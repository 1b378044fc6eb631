// Package compression wraps the codecs used for persisted result snapshots.
package compression

import (
	"fmt"
	"io"
	"strings"
)

// Algorithm defines compression types
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

// String returns the configuration name of the algorithm
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// Extension returns the file suffix used for payloads of this algorithm
func (a Algorithm) Extension() string {
	if a == Snappy {
		return ".sz"
	}
	return ""
}

// ParseAlgorithm maps a configuration name to an Algorithm
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "snappy":
		return Snappy, nil
	default:
		return None, fmt.Errorf("unsupported compression algorithm: %q", name)
	}
}

// Compressor interface for compression algorithms
type Compressor interface {
	// Compress compresses a whole payload
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress
	Decompress(data []byte) ([]byte, error)

	// NewWriter wraps w in a streaming encoder; Close flushes it
	NewWriter(w io.Writer) io.WriteCloser

	// NewReader wraps r in a streaming decoder
	NewReader(r io.Reader) io.Reader

	// Algorithm returns the compression algorithm type
	Algorithm() Algorithm
}

// GetCompressor returns a compressor for the given algorithm
func GetCompressor(algo Algorithm) (Compressor, error) {
	switch algo {
	case None:
		return &NoneCompressor{}, nil
	case Snappy:
		return NewSnappyCompressor(), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

// NoneCompressor is a no-op compressor
type NoneCompressor struct{}

func (n *NoneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (n *NoneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (n *NoneCompressor) NewWriter(w io.Writer) io.WriteCloser {
	return nopWriteCloser{w}
}

func (n *NoneCompressor) NewReader(r io.Reader) io.Reader {
	return r
}

func (n *NoneCompressor) Algorithm() Algorithm {
	return None
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
