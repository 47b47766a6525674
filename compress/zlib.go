package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZlibCompressor implements the one compression algorithm the GDX frame
// format defines (spec.md §4.1). It wraps klauspost/compress/zlib, which
// is wire-compatible with RFC 1950 zlib, so files this library writes
// remain readable by any GDX implementation that decompresses with a
// standard zlib.
type ZlibCompressor struct{}

var _ Codec = ZlibCompressor{}

// NewZlibCompressor returns a stateless zlib Codec.
func NewZlibCompressor() ZlibCompressor {
	return ZlibCompressor{}
}

// Compress deflates data at the default compression level. The caller
// (stream.ByteStream) is responsible for falling back to the raw frame
// when the result is not smaller than the input, per spec.md §4.1.
func (ZlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress inflates a zlib-compressed frame payload.
func (ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
