package endian

import (
	"math"
)

// Signature sentinel values written at open-for-write time and checked
// at open-for-read time, one per fixed-width type whose encoding could
// differ across platforms. See spec.md §4.1.
const (
	sentinelUint16 uint16  = 0x1234
	sentinelInt32  int32   = 0x12345678
	sentinelFloat  float64 = math.Pi
)

// typeSizes lists, in on-disk order, the byte size of each type whose
// signature is negotiated.
var typeSizes = [3]uint8{2, 4, 8}

// WriteSignature appends the endianness/size signature for engine to buf
// and returns the result. The signature is three (size-byte, sentinel)
// pairs, one each for uint16, int32 and float64.
func WriteSignature(buf []byte, engine EndianEngine) []byte {
	buf = append(buf, typeSizes[0])
	buf = engine.AppendUint16(buf, sentinelUint16)

	buf = append(buf, typeSizes[1])
	buf = engine.AppendUint32(buf, uint32(sentinelInt32)) //nolint:gosec

	buf = append(buf, typeSizes[2])
	buf = engine.AppendUint64(buf, math.Float64bits(sentinelFloat))

	return buf
}

// SignatureSize is the fixed length in bytes of the signature block
// written by WriteSignature.
const SignatureSize = (1 + 2) + (1 + 4) + (1 + 8)

// ReadSignature parses the signature block from data (which must be at
// least SignatureSize bytes) and returns the engine to use for the rest
// of the stream.
//
// It tries little-endian first, then big-endian; if neither
// reproduces all three sentinels it returns ok=false, meaning the
// file's fixed-width type sizes are incompatible with this platform
// (spec.md: "opening fails with an incompatible-encoding error").
func ReadSignature(data []byte) (engine EndianEngine, ok bool) {
	if len(data) < SignatureSize {
		return nil, false
	}

	for _, candidate := range [2]EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		if matchesSignature(data, candidate) {
			return candidate, true
		}
	}

	return nil, false
}

func matchesSignature(data []byte, engine EndianEngine) bool {
	off := 0

	if data[off] != typeSizes[0] {
		return false
	}
	off++
	if engine.Uint16(data[off:off+2]) != sentinelUint16 {
		return false
	}
	off += 2

	if data[off] != typeSizes[1] {
		return false
	}
	off++
	if int32(engine.Uint32(data[off:off+4])) != sentinelInt32 { //nolint:gosec
		return false
	}
	off += 4

	if data[off] != typeSizes[2] {
		return false
	}
	off++
	if math.Float64frombits(engine.Uint64(data[off:off+8])) != sentinelFloat {
		return false
	}

	return true
}
