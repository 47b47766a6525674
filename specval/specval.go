// Package specval implements the eleven logical value classes a GDX
// record's double slot can carry (spec.md §4.10, §3's "Acronym"): the
// five user-modifiable special values (undef, NA, +Inf, -Inf, eps), the
// five built-in constants, the raw-double fallback, and the acronym
// encoding that rides in a reserved NaN payload.
//
// The exact bit pattern used to tag an acronym inside a double is
// implementation-defined by the on-disk format (spec.md §9); this
// package's pattern was built from the spec's description, not copied
// from an external source (none was available in the retrieval pack).
package specval

import "math"

// Table holds the five user-modifiable sentinel values plus the
// built-in constants used to pick the smallest tag for a given double
// (spec.md §4.2, §4.10).
type Table struct {
	Undef  float64
	NA     float64
	PosInf float64
	NegInf float64
	Eps    float64
}

// Default returns the built-in sentinel values. Undef and NA are
// distinct NaN payloads (bit-compared, never by ==) so they never alias
// each other or the acronym NaN payload below.
func Default() Table {
	return Table{
		Undef:  math.Float64frombits(0x7FF8000000000000),
		NA:     math.Float64frombits(0x7FF8000000000001),
		PosInf: math.Inf(1),
		NegInf: math.Inf(-1),
		Eps:    1e-10,
	}
}

// Distinct reports whether the five sentinels are pairwise distinct,
// compared by bit pattern (so two differently-payloaded NaNs are not
// considered equal, but also never accidentally equal by IEEE-754's
// NaN != NaN rule either).
func (t Table) Distinct() bool {
	vals := [5]uint64{
		math.Float64bits(t.Undef),
		math.Float64bits(t.NA),
		math.Float64bits(t.PosInf),
		math.Float64bits(t.NegInf),
		math.Float64bits(t.Eps),
	}

	for i := range vals {
		for j := i + 1; j < len(vals); j++ {
			if vals[i] == vals[j] {
				return false
			}
		}
	}

	return true
}

// constants are the five built-in values eligible for tags 5..9, in
// ascending tag-preference order (spec.md §4.2).
var constants = [5]float64{0, 1, -1, 0.5, 2}

// Tag returns the smallest value tag that exactly represents v, and the
// raw double to store alongside it (only meaningful for TagRaw).
func (t Table) Tag(v float64) (tag uint8, raw float64) {
	specials := [5]float64{t.Undef, t.NA, t.PosInf, t.NegInf, t.Eps}
	bits := math.Float64bits(v)

	for i, s := range specials {
		if math.Float64bits(s) == bits {
			return uint8(i), 0 //nolint:gosec
		}
	}

	for i, c := range constants {
		if c == v {
			return uint8(5 + i), 0 //nolint:gosec
		}
	}

	return 10, v
}

// Value reverses Tag: given a tag in [0,10] and (for tag 10 only) the
// raw double that followed it on the wire, returns the logical value.
func (t Table) Value(tag uint8, raw float64) float64 {
	switch {
	case tag < 5:
		specials := [5]float64{t.Undef, t.NA, t.PosInf, t.NegInf, t.Eps}
		return specials[tag]
	case tag < 10:
		return constants[tag-5]
	default:
		return raw
	}
}

// acronymNaNMask is the quiet-NaN exponent/quiet-bit pattern every
// acronym-tagged double carries; below the quiet bit (bit 51) the low 51
// bits split into a 27-bit acronym number (bits 24..50) and a 24-bit
// modifier (bits 0..23).
const acronymNaNMask = 0x7FF8000000000000

// EncodeAcronym packs an acronym number (nr >= 1) and an optional
// modifier into a double whose bit pattern the record codec writes
// verbatim as the raw double following a TagRaw value-tag byte.
func EncodeAcronym(nr, modifier int) float64 {
	bits := uint64(acronymNaNMask) | (uint64(nr&0x07FFFFFF) << 24) | uint64(modifier&0x00FFFFFF) //nolint:gosec
	return math.Float64frombits(bits)
}

// IsAcronym reports whether v carries a nonzero acronym number in the
// pattern EncodeAcronym produces. A canonical Undef/NA sentinel (nr
// field all zero) is never mistaken for an acronym because acronym
// numbers are 1-based (spec.md §3).
func IsAcronym(v float64) bool {
	bits := math.Float64bits(v)
	if bits&acronymNaNMask != acronymNaNMask {
		return false
	}

	nrField := (bits >> 24) & 0x07FFFFFF

	return nrField != 0
}

// DecodeAcronym reverses EncodeAcronym. ok is false if v does not carry
// an acronym tag.
func DecodeAcronym(v float64) (nr, modifier int, ok bool) {
	if !IsAcronym(v) {
		return 0, 0, false
	}

	bits := math.Float64bits(v)
	nr = int((bits >> 24) & 0x07FFFFFF)
	modifier = int(bits & 0x00FFFFFF)

	return nr, modifier, true
}
