package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gdxlib/gdx/compress"
)

// FrameSize is the fixed size, in bytes, of one uncompressed frame
// (spec.md §4.1).
const FrameSize = 32 * 1024

// frameFlagRaw/frameFlagCompressed are the one-byte flags preceding each
// on-disk frame.
const (
	frameFlagRaw        = 0
	frameFlagCompressed = 1
)

// writeFrame writes one frame to w: a 1-byte flag, a 2-byte big-endian
// payload length, and the payload. If codec compression would not make
// the payload smaller, the frame falls back to raw (spec.md §4.1).
func writeFrame(w io.Writer, payload []byte, codec compress.Codec, compress bool) (int64, error) {
	flag := byte(frameFlagRaw)
	out := payload

	if compress && len(payload) > 0 {
		compressed, err := codec.Compress(payload)
		if err != nil {
			return 0, fmt.Errorf("stream: compress frame: %w", err)
		}
		if len(compressed) < len(payload) {
			flag = frameFlagCompressed
			out = compressed
		}
	}

	if len(out) > 0xFFFF {
		return 0, fmt.Errorf("stream: frame payload too large: %d bytes", len(out))
	}

	var hdr [3]byte
	hdr[0] = flag
	binary.BigEndian.PutUint16(hdr[1:3], uint16(len(out))) //nolint:gosec

	n1, err := w.Write(hdr[:])
	if err != nil {
		return int64(n1), err
	}

	n2, err := w.Write(out)

	return int64(n1 + n2), err
}

// readFrame reads one frame from r and returns its decompressed payload.
func readFrame(r io.Reader, codec compress.Codec) ([]byte, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint16(hdr[1:3])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("stream: short frame payload: %w", err)
	}

	if hdr[0] == frameFlagCompressed {
		decompressed, err := codec.Decompress(payload)
		if err != nil {
			return nil, fmt.Errorf("stream: decompress frame: %w", err)
		}

		return decompressed, nil
	}

	return payload, nil
}
