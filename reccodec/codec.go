// Package reccodec implements RecordCodec: delta-encoding of a sorted
// run of dimension-keyed records within one symbol's data section
// (spec.md §4.2).
//
// gxfile.cpp — the original implementation's record codec — was not
// present in the retrieval pack (only its header was), so the exact
// selector byte-value scheme below is this implementation's own
// reconstruction from spec.md's description rather than a byte-exact
// port; see DESIGN.md's reccodec entry. It is internally
// consistent and round-trips (spec.md §8's write/read invariant),
// which is the property this library can actually guarantee without
// the source.
//
// Selector byte, given dimension count d and first-differing dimension
// f (0-based) between a record's key and the previous one:
//
//   - [1, d]: general form. Byte value s means f = s-1; dims [0,f) are
//     unchanged from the previous key, dims [f,d) follow as
//     per-dimension deltas (key[i] - minKey[i]) at that dimension's
//     chosen width.
//   - (d, 254]: fast form, only ever used when f == d-1 (only the last
//     dimension changed) and that delta is in [1, 254-d]. The byte
//     itself is d+delta; no further bytes follow for the key.
//   - 255: end-of-data sentinel.
//
// The general form's byte value d (meaning f == d-1, delta == 0) never
// collides with the fast form because the fast form requires delta >= 1.
package reccodec

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/specval"
)

// eofSelector is the sentinel selector byte marking the end of a
// symbol's record run.
const eofSelector = 255

// Record is one decoded (or about-to-be-encoded) GDX record: a
// dimension-keyed tuple of raw UEL numbers and the symbol-type-
// appropriate number of double values.
type Record struct {
	Key    []uint32
	Values []float64
}

// Writer is the subset of stream.ByteStream's typed write API the
// codec needs.
type Writer interface {
	WriteByte(b byte) error
	WriteUint8(v uint8) error
	WriteUint16(v uint16) error
	WriteInt32(v int32) error
	WriteFloat64(v float64) error
	WriteShortString(s string) error
}

// Reader is the read-side counterpart of Writer.
type Reader interface {
	ReadByte() (byte, error)
	ReadUint8() (uint8, error)
	ReadUint16() (uint16, error)
	ReadInt32() (int32, error)
	ReadFloat64() (float64, error)
	ReadShortString() (string, error)
}

func widthFor(diff uint32) format.KeyWidth {
	switch {
	case diff <= 255:
		return format.Width8
	case diff <= 65535:
		return format.Width16
	default:
		return format.Width32
	}
}

func keyBounds(dim int, records []Record) (minKey, maxKey []uint32) {
	minKey = make([]uint32, dim)
	maxKey = make([]uint32, dim)

	if len(records) == 0 {
		return minKey, maxKey
	}

	copy(minKey, records[0].Key)
	copy(maxKey, records[0].Key)

	for _, r := range records[1:] {
		for i := 0; i < dim; i++ {
			if r.Key[i] < minKey[i] {
				minKey[i] = r.Key[i]
			}
			if r.Key[i] > maxKey[i] {
				maxKey[i] = r.Key[i]
			}
		}
	}

	return minKey, maxKey
}

func writeWidth(w Writer, width format.KeyWidth, delta uint32) error {
	switch width {
	case format.Width8:
		return w.WriteUint8(uint8(delta)) //nolint:gosec
	case format.Width16:
		return w.WriteUint16(uint16(delta)) //nolint:gosec
	default:
		return w.WriteInt32(int32(delta)) //nolint:gosec
	}
}

func readWidth(r Reader, width format.KeyWidth) (uint32, error) {
	switch width {
	case format.Width8:
		v, err := r.ReadUint8()
		return uint32(v), err
	case format.Width16:
		v, err := r.ReadUint16()
		return uint32(v), err
	default:
		v, err := r.ReadInt32()
		return uint32(v), err //nolint:gosec
	}
}

// Encode writes one symbol's entire record run: the _DATA_ marker, the
// dimension, a placeholder int32, the per-dimension (min,max) pair, the
// delta-encoded records themselves (records must already be strictly
// increasing in lexicographic key order), and the end-of-data sentinel.
func Encode(w Writer, marker string, dim int, symType format.SymbolType, records []Record, sv specval.Table) error {
	if err := w.WriteShortString(marker); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(dim)); err != nil { //nolint:gosec
		return err
	}
	if err := w.WriteInt32(0); err != nil { // placeholder, ignored on read
		return err
	}

	minKey, maxKey := keyBounds(dim, records)
	widths := make([]format.KeyWidth, dim)

	for i := 0; i < dim; i++ {
		if err := w.WriteInt32(int32(minKey[i])); err != nil { //nolint:gosec
			return err
		}
		if err := w.WriteInt32(int32(maxKey[i])); err != nil { //nolint:gosec
			return err
		}
		widths[i] = widthFor(maxKey[i] - minKey[i])
	}

	var prev []uint32

	for _, rec := range records {
		f := 0
		if prev != nil {
			f = dim // no differing dim found yet; dim means "duplicate", checked below
			for i := 0; i < dim; i++ {
				if rec.Key[i] != prev[i] {
					f = i
					break
				}
			}
			if f == dim {
				return fmt.Errorf("%w: key %v repeats previous key", errs.ErrDuplicateKey, rec.Key)
			}
			if lexLess(rec.Key, prev) {
				return fmt.Errorf("%w: key %v precedes %v", errs.ErrKeyOutOfOrder, rec.Key, prev)
			}
		}

		if err := writeSelectorAndKey(w, dim, f, rec.Key, minKey, widths); err != nil {
			return err
		}

		want := symType.ValueCount()
		for i := 0; i < want; i++ {
			var v float64
			if i < len(rec.Values) {
				v = rec.Values[i]
			}

			tag, raw := sv.Tag(v)
			if err := w.WriteByte(tag); err != nil {
				return err
			}
			if format.ValueTag(tag) == format.TagRaw {
				if err := w.WriteFloat64(raw); err != nil {
					return err
				}
			}
		}

		prev = rec.Key
	}

	return w.WriteByte(eofSelector)
}

func lexLess(a, b []uint32) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return false
}

func writeSelectorAndKey(w Writer, dim, f int, key, minKey []uint32, widths []format.KeyWidth) error {
	if f == dim-1 && dim >= 1 {
		delta := key[dim-1] - minKey[dim-1]
		if delta >= 1 && int(delta) <= 254-dim {
			return w.WriteByte(byte(dim) + byte(delta)) //nolint:gosec
		}
	}

	if err := w.WriteByte(byte(f + 1)); err != nil { //nolint:gosec
		return err
	}

	for i := f; i < dim; i++ {
		delta := key[i] - minKey[i]
		if err := writeWidth(w, widths[i], delta); err != nil {
			return err
		}
	}

	return nil
}

// Decode reads one symbol's entire record run previously written by
// Encode, verifying the marker. Optionally filters records through
// keep, which is called with the raw key before values are decoded;
// returning false skips the record's values being retained in the
// result (they are still consumed from the stream). A nil keep keeps
// everything.
func Decode(r Reader, marker string, symType format.SymbolType, sv specval.Table, keep func(key []uint32) bool) ([]Record, error) {
	got, err := r.ReadShortString()
	if err != nil {
		return nil, err
	}
	if got != marker {
		return nil, fmt.Errorf("%w: expected marker %q, got %q", errs.ErrBadMarker, marker, got)
	}

	dim32, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	dim := int(dim32)

	if _, err := r.ReadInt32(); err != nil { // placeholder
		return nil, err
	}

	minKey := make([]uint32, dim)
	widths := make([]format.KeyWidth, dim)

	for i := 0; i < dim; i++ {
		mn, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		mx, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}

		minKey[i] = uint32(mn) //nolint:gosec
		widths[i] = widthFor(uint32(mx-mn)) //nolint:gosec
	}

	valueCount := symType.ValueCount()

	var (
		records []Record
		prev    []uint32
	)

	for {
		sel, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if sel == eofSelector {
			break
		}

		key := make([]uint32, dim)

		var f int

		switch {
		case dim == 0 && sel == 1:
			// scalar symbol: no key dimensions to decode.
		case int(sel) >= 1 && int(sel) <= dim:
			f = int(sel) - 1
			if prev != nil {
				copy(key[:f], prev[:f])
			}
			for i := f; i < dim; i++ {
				delta, err := readWidth(r, widths[i])
				if err != nil {
					return nil, err
				}
				key[i] = minKey[i] + delta
			}
		case int(sel) > dim && int(sel) < eofSelector:
			f = dim - 1
			if prev != nil {
				copy(key[:f], prev[:f])
			}
			key[f] = minKey[f] + uint32(int(sel)-dim) //nolint:gosec
		default:
			return nil, fmt.Errorf("%w: invalid selector byte %d", errs.ErrCorrupt, sel)
		}

		values := make([]float64, valueCount)
		for i := 0; i < valueCount; i++ {
			tag, err := r.ReadByte()
			if err != nil {
				return nil, err
			}

			var raw float64
			if format.ValueTag(tag) == format.TagRaw {
				raw, err = r.ReadFloat64()
				if err != nil {
					return nil, err
				}
			}

			values[i] = sv.Value(tag, raw)
		}

		if keep == nil || keep(key) {
			records = append(records, Record{Key: key, Values: values})
		}

		prev = key
	}

	return records, nil
}
