// Package compress provides the frame-level compression used by
// stream.ByteStream (spec.md §4.1): each 32 KiB frame is independently
// compressed or, if compression would not shrink it, written raw.
package compress

import "fmt"

// Compressor compresses one frame's payload.
type Compressor interface {
	// Compress returns the compressed form of data. The returned slice
	// is newly allocated; data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses one frame's payload back to its original
// size bytes.
type Decompressor interface {
	// Decompress returns the decompressed form of data, which must have
	// been produced by the matching Compressor.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// Algorithm identifies which codec a frame (or the whole file, per the
// header's compressed flag) was written with. GDX's on-disk frame flag
// is a single bit (spec.md §4.1: "flag (0 = raw, 1 = zlib)"); Algorithm
// exists for API clarity even though only two values are ever valid on
// the wire.
type Algorithm uint8

const (
	AlgorithmNone Algorithm = 0
	AlgorithmZlib Algorithm = 1
)

// NewCodec returns the Codec for algo.
func NewCodec(algo Algorithm) (Codec, error) {
	switch algo {
	case AlgorithmNone:
		return NewNoOpCompressor(), nil
	case AlgorithmZlib:
		return NewZlibCompressor(), nil
	default:
		return nil, fmt.Errorf("compress: unknown algorithm %d", algo)
	}
}
