package gdx

import (
	"github.com/gdxlib/gdx/section"
	"github.com/gdxlib/gdx/symtab"
)

// writeUELSection serializes the UEL table (spec.md §4.11's _UEL_
// section) and returns its starting offset.
func (h *Handle) writeUELSection() (int64, error) {
	pos, err := h.stream.Align()
	if err != nil {
		return 0, err
	}

	if err := h.stream.WriteShortString(section.MarkerUELs); err != nil {
		return 0, err
	}
	if err := h.stream.WriteInt32(int32(h.uels.Count())); err != nil { //nolint:gosec
		return 0, err
	}
	for _, name := range h.uels.All() {
		if err := h.stream.WriteShortString(name); err != nil {
			return 0, err
		}
	}

	return pos, h.stream.WriteShortString(section.MarkerUELs)
}

// writeSetTextSection serializes the SetTextPool (_SETT_ section). The
// leading int32 is the pool's total entry count, including the mandatory
// empty entry 0 (spec.md §4.11's "int32 (count+1)": count is the number
// of user-added texts, +1 for the always-present empty entry).
func (h *Handle) writeSetTextSection() (int64, error) {
	pos, err := h.stream.Align()
	if err != nil {
		return 0, err
	}

	if err := h.stream.WriteShortString(section.MarkerSetText); err != nil {
		return 0, err
	}
	if err := h.stream.WriteInt32(int32(h.settexts.Count())); err != nil { //nolint:gosec
		return 0, err
	}
	for _, e := range h.settexts.All() {
		if err := h.stream.WriteShortString(e.Text); err != nil {
			return 0, err
		}
		if err := h.stream.WriteInt32(int32(e.NodeNr)); err != nil { //nolint:gosec
			return 0, err
		}
	}

	return pos, h.stream.WriteShortString(section.MarkerSetText)
}

// writeAcronymSection serializes the AcronymList (_ACRO_ section). Each
// entry is written as (name, text, index, nr); nr is this
// implementation's addition to the spec's literal (name,text,index)
// triple, required so a reopened file reproduces the exact file-scoped
// nr an implicit allocation assigned (spec.md §4.5).
func (h *Handle) writeAcronymSection() (int64, error) {
	pos, err := h.stream.Align()
	if err != nil {
		return 0, err
	}

	if err := h.stream.WriteShortString(section.MarkerAcronym); err != nil {
		return 0, err
	}
	if err := h.stream.WriteInt32(int32(h.acronyms.Count())); err != nil { //nolint:gosec
		return 0, err
	}
	for _, a := range h.acronyms.All() {
		if err := h.stream.WriteShortString(a.Name); err != nil {
			return 0, err
		}
		if err := h.stream.WriteShortString(a.Text); err != nil {
			return 0, err
		}
		if err := h.stream.WriteInt32(int32(a.Index)); err != nil { //nolint:gosec
			return 0, err
		}
		if err := h.stream.WriteInt32(int32(a.Nr)); err != nil { //nolint:gosec
			return 0, err
		}
	}

	return pos, h.stream.WriteShortString(section.MarkerAcronym)
}

// domKind tags how one dimension's DomainRef is persisted in the _DOMS_
// section.
type domKind int32

const (
	domNone    domKind = 0 // universe / no domain link
	domStrict  domKind = 1 // resolved parent symbol number follows
	domPending domKind = 2 // relaxed, pending name (index into the name table follows)
	domRelaxed domKind = 3 // relaxed, no name
)

// resolveDomains performs the deferred domain-link resolution spec.md §9
// describes: any symbol whose DomainRef still carries a PendingName (set
// by SymbolSetDomainX before the parent was known) is looked up by name.
// An unresolved parent degrades silently to a relaxed link.
func (h *Handle) resolveDomains() {
	for _, sym := range h.symbols.All() {
		changed := false
		domain := append([]symtab.DomainRef(nil), sym.Domain...)

		for i, link := range domain {
			if link.Relaxed || link.SymbolNumber >= 0 || link.PendingName == "" {
				continue
			}

			if num, ok := h.symbols.FindByName(link.PendingName); ok {
				domain[i].SymbolNumber = num
			} else {
				h.logger.Warn("gdx: domain parent never defined, degrading to relaxed", "symbol", sym.Name, "parent", link.PendingName)
				domain[i].Relaxed = true
			}

			changed = true
		}

		if changed {
			_ = h.symbols.SetDomain(sym.Number, domain)
		}
	}
}

// writeDomainsSection serializes relaxed/pending domain metadata (the
// _DOMS_ section). Format is this implementation's own reconstruction
// (spec.md §4.11 describes it only as "relaxed domain names and
// per-symbol index lists", with no byte-exact layout in the retrieval
// pack): a table of distinct pending parent names, then per symbol, per
// dimension, a domKind tag plus its payload.
func (h *Handle) writeDomainsSection() (int64, error) {
	h.resolveDomains()

	var names []string
	nameIndex := make(map[string]int)
	for _, sym := range h.symbols.All() {
		for _, link := range sym.Domain {
			if link.Relaxed && link.PendingName != "" {
				if _, ok := nameIndex[link.PendingName]; !ok {
					nameIndex[link.PendingName] = len(names)
					names = append(names, link.PendingName)
				}
			}
		}
	}

	pos, err := h.stream.Align()
	if err != nil {
		return 0, err
	}

	if err := h.stream.WriteShortString(section.MarkerDomains); err != nil {
		return 0, err
	}

	if err := h.stream.WriteInt32(int32(len(names))); err != nil { //nolint:gosec
		return 0, err
	}
	for _, n := range names {
		if err := h.stream.WriteShortString(n); err != nil {
			return 0, err
		}
	}

	if err := h.stream.WriteInt32(int32(h.symbols.Count())); err != nil { //nolint:gosec
		return 0, err
	}
	for _, sym := range h.symbols.All() {
		if err := h.stream.WriteInt32(int32(sym.Dim)); err != nil { //nolint:gosec
			return 0, err
		}
		for _, link := range sym.Domain {
			switch {
			case link.Relaxed && link.PendingName != "":
				if err := h.stream.WriteInt32(int32(domPending)); err != nil {
					return 0, err
				}
				if err := h.stream.WriteInt32(int32(nameIndex[link.PendingName])); err != nil { //nolint:gosec
					return 0, err
				}
			case link.Relaxed:
				if err := h.stream.WriteInt32(int32(domRelaxed)); err != nil {
					return 0, err
				}
			case link.SymbolNumber < 0:
				if err := h.stream.WriteInt32(int32(domNone)); err != nil {
					return 0, err
				}
			default:
				if err := h.stream.WriteInt32(int32(domStrict)); err != nil {
					return 0, err
				}
				if err := h.stream.WriteInt32(int32(link.SymbolNumber)); err != nil { //nolint:gosec
					return 0, err
				}
			}
		}
	}

	return pos, h.stream.WriteShortString(section.MarkerDomains)
}

// writeSymbolsSection serializes the symbol catalog (_SYMB_ section).
// Domain links are carried separately in _DOMS_; this section is purely
// the per-symbol scalar metadata plus its data position.
func (h *Handle) writeSymbolsSection() (int64, error) {
	pos, err := h.stream.Align()
	if err != nil {
		return 0, err
	}

	if err := h.stream.WriteShortString(section.MarkerSymbols); err != nil {
		return 0, err
	}
	if err := h.stream.WriteInt32(int32(h.symbols.Count())); err != nil { //nolint:gosec
		return 0, err
	}

	for _, sym := range h.symbols.All() {
		if err := writeSymbolEntry(h, sym); err != nil {
			return 0, err
		}
	}

	return pos, h.stream.WriteShortString(section.MarkerSymbols)
}

func writeSymbolEntry(h *Handle, sym *symtab.Symbol) error {
	if err := h.stream.WriteShortString(sym.Name); err != nil {
		return err
	}
	if err := h.stream.WriteInt32(int32(sym.Dim)); err != nil { //nolint:gosec
		return err
	}
	if err := h.stream.WriteInt32(int32(sym.Type)); err != nil { //nolint:gosec
		return err
	}
	if err := h.stream.WriteInt32(int32(sym.UserInfo)); err != nil { //nolint:gosec
		return err
	}
	if err := h.stream.WriteShortString(sym.Text); err != nil {
		return err
	}
	if err := h.stream.WriteInt32(int32(sym.RecordCount)); err != nil { //nolint:gosec
		return err
	}
	if err := h.stream.WriteInt32(int32(sym.ErrorCount)); err != nil { //nolint:gosec
		return err
	}

	hasSetText := int32(0)
	if sym.HasSetText {
		hasSetText = 1
	}
	if err := h.stream.WriteInt32(hasSetText); err != nil {
		return err
	}

	if err := h.stream.WriteInt64(sym.Position); err != nil {
		return err
	}

	if err := h.stream.WriteInt32(int32(len(sym.Comments))); err != nil { //nolint:gosec
		return err
	}
	for _, c := range sym.Comments {
		if err := h.stream.WriteShortString(c); err != nil {
			return err
		}
	}

	return nil
}
