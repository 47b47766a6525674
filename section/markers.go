// Package section defines the fixed, byte-exact structures of the GDX
// container: the file header, the section marker strings, and the
// six-pointer section index rewritten at Close (spec.md §4.11).
//
// Every metadata section (_UEL_, _SETT_, _ACRO_, _DOMS_, _SYMB_) is
// bracketed by its literal ASCII marker written twice (open and close);
// a symbol's _DATA_ run opens with its marker and ends with the record
// codec's 255 end-of-data selector. A reader that does not find the
// expected marker at the expected offset treats the file as corrupt
// (errs.ErrBadMarker).
package section

// Section markers, written verbatim as short strings around each
// section's payload.
const (
	MarkerSymbols = "_SYMB_"
	MarkerUELs    = "_UEL_"
	MarkerSetText = "_SETT_"
	MarkerAcronym = "_ACRO_"
	MarkerDomains = "_DOMS_"
	MarkerData    = "_DATA_"
)

// BOISentinel is the "beginning of index" marker written right after the
// header's fixed fields, historically k_Mark_BOI in the source.
const BOISentinel int32 = 19510624 // 0x012A0500

// HeaderMagic is the single leading byte every GDX file starts with.
const HeaderMagic byte = 0x7B

// FormatName is the short string literally written right after
// HeaderMagic and before the version, identifying the format family on
// disk.
const FormatName = "GAMSGDX"

// AbsentOffset marks a section offset that has not been written yet.
const AbsentOffset int64 = -1

// Version is the current on-disk format version this library writes.
// GDXCONVERT can request writing an older version's header value while
// the payload encoding remains current (SPEC_FULL.md §"GDXCONVERT").
type Version int32

const (
	VersionCurrent Version = 7
	VersionV7      Version = 7
	VersionV5      Version = 5
)

// ParseVersion maps a GDXCONVERT string ("v5", "v7") to a Version, or
// returns (VersionCurrent, false) if unrecognized.
func ParseVersion(s string) (Version, bool) {
	switch s {
	case "v5":
		return VersionV5, true
	case "v7":
		return VersionV7, true
	default:
		return VersionCurrent, false
	}
}
