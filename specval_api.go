package gdx

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/specval"
)

// GetSpecialValues returns the five user-modifiable sentinels currently
// in effect for encoding (spec.md §4.10): undef, NA, +Inf, -Inf, eps.
func (h *Handle) GetSpecialValues() (undef, na, posInf, negInf, eps float64) {
	t := h.specials
	return t.Undef, t.NA, t.PosInf, t.NegInf, t.Eps
}

// SetSpecialValues replaces the five sentinels, failing if they are not
// pairwise distinct (spec.md §4.10).
func (h *Handle) SetSpecialValues(undef, na, posInf, negInf, eps float64) error {
	t := specval.Table{Undef: undef, NA: na, PosInf: posInf, NegInf: negInf, Eps: eps}
	if !t.Distinct() {
		return h.fail(fmt.Errorf("%w", errs.ErrSpecialValueCollision))
	}

	h.specials = t

	return nil
}

// ResetSpecialValues restores the built-in default sentinels.
func (h *Handle) ResetSpecialValues() {
	h.specials = specval.Default()
	h.readSpecials = nil
}

// SetReadSpecialValues overrides the sentinels used to interpret
// decoded values during a read session, independent of the sentinels
// used for writing (spec.md §6's "SetReadSpecialValues" entry).
func (h *Handle) SetReadSpecialValues(undef, na, posInf, negInf, eps float64) error {
	t := specval.Table{Undef: undef, NA: na, PosInf: posInf, NegInf: negInf, Eps: eps}
	if !t.Distinct() {
		return h.fail(fmt.Errorf("%w", errs.ErrSpecialValueCollision))
	}

	h.readSpecials = &t

	return nil
}

// MapValue classifies v against the active sentinels and built-in
// constants, returning the value tag it would receive on encode
// (spec.md §4.2, §4.10).
func (h *Handle) MapValue(v float64) (tag int, isSpecial bool) {
	t, raw := h.specials.Tag(v)
	_ = raw

	return int(t), t < 5
}

// StoreDomainSets reports the StoreDomainSets flag (default true). Parent
// set membership bitmaps are kept for the handle's lifetime whatever its
// value.
func (h *Handle) StoreDomainSets() bool { return h.storeDomainSets }

// StoreDomainSetsSet sets the StoreDomainSets flag; no other code reads
// it.
func (h *Handle) StoreDomainSetsSet(v bool) { h.storeDomainSets = v }

// AllowBogusDomains reports the AllowBogusDomains flag. No other code
// reads it: a strict domain link whose parent never resolves is always
// degraded to relaxed at Close with a logged warning.
func (h *Handle) AllowBogusDomains() bool { return h.allowBogusDomains }

// AllowBogusDomainsSet sets the AllowBogusDomains policy.
func (h *Handle) AllowBogusDomainsSet(v bool) { h.allowBogusDomains = v }

// MapAcronymsToNaN reports whether decoded acronym values collapse to a
// plain NaN instead of round-tripping through AcronymGetMapping
// (SPEC_FULL.md item 2).
func (h *Handle) MapAcronymsToNaN() bool { return h.mapAcronymsToNaN }

// MapAcronymsToNaNSet sets the MapAcronymsToNaN policy.
func (h *Handle) MapAcronymsToNaNSet(v bool) { h.mapAcronymsToNaN = v }
