package gdx

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/specval"
)

// AcronymAdd registers name/text/index as a new file-scoped acronym
// (spec.md §4.5), returning its assigned number.
func (h *Handle) AcronymAdd(name, text string, index int) (int, error) {
	nr, err := h.acronyms.Add(name, text, index)
	if err != nil {
		return 0, h.fail(err)
	}

	return nr, nil
}

// AcronymCount returns the number of acronyms registered so far,
// whether added explicitly via AcronymAdd or allocated implicitly while
// decoding a value the reader had not seen before.
func (h *Handle) AcronymCount() int { return h.acronyms.Count() }

// AcronymGetInfo returns the pos'th (0-based) acronym's name, text and
// index.
func (h *Handle) AcronymGetInfo(pos int) (name, text string, index int, err error) {
	a, ok := h.acronyms.GetInfo(pos)
	if !ok {
		return "", "", 0, h.fail(fmt.Errorf("%w: acronym position %d", errs.ErrBadSymbolNumber, pos))
	}

	return a.Name, a.Text, a.Index, nil
}

// AcronymSetInfo overwrites the pos'th acronym's name/text/index without
// changing its assigned number.
func (h *Handle) AcronymSetInfo(pos int, name, text string, index int) error {
	return h.fail(h.acronyms.SetInfo(pos, name, text, index))
}

// AcronymGetMapping returns the acronym number and modifier encoded in
// v, or ok=false if v is not an acronym-tagged value.
func (h *Handle) AcronymGetMapping(v float64) (nr, modifier int, ok bool) {
	return specval.DecodeAcronym(v)
}

// AcronymIndex returns the orgIndx field of the acronym with number nr,
// or 0 if nr is unknown.
func (h *Handle) AcronymIndex(nr int) int {
	a, ok := h.acronyms.ByNr(nr)
	if !ok {
		return 0
	}

	return a.Index
}

// AcronymName returns the name of the acronym with number nr, "" if
// unknown or still unnamed (an implicitly-allocated placeholder).
func (h *Handle) AcronymName(nr int) string {
	a, ok := h.acronyms.ByNr(nr)
	if !ok {
		return ""
	}

	return a.Name
}

// AcronymNextNr hints the number to assign to the next explicit
// AcronymAdd call; a hint lower than the internal counter is ignored
// (SPEC_FULL.md item 4).
func (h *Handle) AcronymNextNr(nr int) { h.acronyms.SetNextNr(nr) }

// AcronymValue returns the encoded double for the acronym numbered nr
// with the given modifier, registering an unnamed placeholder entry if
// nr has not been seen yet (matching how the record codec allocates one
// on decode).
func (h *Handle) AcronymValue(nr, modifier int) float64 {
	h.acronyms.ResolveImplicit(nr)

	return specval.EncodeAcronym(nr, modifier)
}
