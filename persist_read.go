package gdx

import (
	"fmt"

	"github.com/gdxlib/gdx/acronym"
	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/section"
	"github.com/gdxlib/gdx/settext"
	"github.com/gdxlib/gdx/symtab"
	"github.com/gdxlib/gdx/uel"
)

// loadSections populates the handle's in-memory tables from the six
// sections addressed by the header's offset index, the read-side
// counterpart of closeWrite's section writers in persist_write.go. Any
// offset marked section.AbsentOffset (never written) loads as empty.
func (h *Handle) loadSections() error {
	uels, err := h.readUELSection()
	if err != nil {
		return err
	}
	h.uels = uels

	settexts, err := h.readSetTextSection()
	if err != nil {
		return err
	}
	h.settexts = settexts

	acronyms, err := h.readAcronymSection()
	if err != nil {
		return err
	}
	h.acronyms = acronyms

	symbols, err := h.readSymbolsSection()
	if err != nil {
		return err
	}

	domains, err := h.readDomainsSection(symbols)
	if err != nil {
		return err
	}
	for number, refs := range domains {
		if err := symbols.SetDomain(number, refs); err != nil {
			return err
		}
	}

	h.symbols = symbols

	return nil
}

func (h *Handle) seekSection(offset int64, marker string) error {
	if offset == section.AbsentOffset {
		return nil
	}
	if err := h.stream.Seek(offset); err != nil {
		return err
	}

	got, err := h.stream.ReadShortString()
	if err != nil {
		return err
	}
	if got != marker {
		return fmt.Errorf("%w: expected marker %q, got %q", errs.ErrBadMarker, marker, got)
	}

	return nil
}

func (h *Handle) readUELSection() (*uel.Table, error) {
	if err := h.seekSection(h.header.Offsets[section.OffsetUEL], section.MarkerUELs); err != nil {
		return nil, err
	}
	if h.header.Offsets[section.OffsetUEL] == section.AbsentOffset {
		return uel.NewTable(), nil
	}

	count, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}

	names := make([]string, count)
	for i := range names {
		names[i], err = h.stream.ReadShortString()
		if err != nil {
			return nil, err
		}
	}

	if _, err := h.stream.ReadShortString(); err != nil { // closing marker
		return nil, err
	}

	return uel.LoadRaw(names, nil), nil
}

func (h *Handle) readSetTextSection() (*settext.Pool, error) {
	if err := h.seekSection(h.header.Offsets[section.OffsetSetText], section.MarkerSetText); err != nil {
		return nil, err
	}
	if h.header.Offsets[section.OffsetSetText] == section.AbsentOffset {
		return settext.NewPool(), nil
	}

	count, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}

	entries := make([]settext.Entry, count)
	for i := range entries {
		text, err := h.stream.ReadShortString()
		if err != nil {
			return nil, err
		}
		nodeNr, err := h.stream.ReadInt32()
		if err != nil {
			return nil, err
		}
		entries[i] = settext.Entry{Text: text, NodeNr: int(nodeNr)}
	}

	if _, err := h.stream.ReadShortString(); err != nil {
		return nil, err
	}

	return settext.LoadRaw(entries), nil
}

func (h *Handle) readAcronymSection() (*acronym.List, error) {
	if err := h.seekSection(h.header.Offsets[section.OffsetAcronym], section.MarkerAcronym); err != nil {
		return nil, err
	}
	if h.header.Offsets[section.OffsetAcronym] == section.AbsentOffset {
		return acronym.NewList(), nil
	}

	count, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}

	items := make([]acronym.Acronym, count)
	for i := range items {
		name, err := h.stream.ReadShortString()
		if err != nil {
			return nil, err
		}
		text, err := h.stream.ReadShortString()
		if err != nil {
			return nil, err
		}
		index, err := h.stream.ReadInt32()
		if err != nil {
			return nil, err
		}
		nr, err := h.stream.ReadInt32()
		if err != nil {
			return nil, err
		}
		items[i] = acronym.Acronym{Name: name, Text: text, Index: int(index), Nr: int(nr)}
	}

	if _, err := h.stream.ReadShortString(); err != nil {
		return nil, err
	}

	return acronym.LoadRaw(items), nil
}

func (h *Handle) readSymbolsSection() (*symtab.Table, error) {
	if err := h.seekSection(h.header.Offsets[section.OffsetSymbol], section.MarkerSymbols); err != nil {
		return nil, err
	}
	if h.header.Offsets[section.OffsetSymbol] == section.AbsentOffset {
		return symtab.NewTable(), nil
	}

	count, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}

	symbols := make([]*symtab.Symbol, count)
	for i := range symbols {
		sym, err := h.readSymbolEntry(i + 1)
		if err != nil {
			return nil, err
		}
		symbols[i] = sym
	}

	if _, err := h.stream.ReadShortString(); err != nil {
		return nil, err
	}

	table := symtab.LoadRaw(symbols)
	for _, sym := range symbols {
		if err := table.MarkWritten(sym.Number, sym.RecordCount, sym.ErrorCount, sym.HasSetText, sym.Position); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func (h *Handle) readSymbolEntry(number int) (*symtab.Symbol, error) {
	name, err := h.stream.ReadShortString()
	if err != nil {
		return nil, err
	}
	dim32, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}
	typ32, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}
	userInfo32, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}
	text, err := h.stream.ReadShortString()
	if err != nil {
		return nil, err
	}
	recordCount32, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}
	errorCount32, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}
	hasSetText32, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}
	position, err := h.stream.ReadInt64()
	if err != nil {
		return nil, err
	}
	commentCount32, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}

	comments := make([]string, commentCount32)
	for i := range comments {
		comments[i], err = h.stream.ReadShortString()
		if err != nil {
			return nil, err
		}
	}

	dim := int(dim32)

	return &symtab.Symbol{
		Number:      number,
		Name:        name,
		Dim:         dim,
		Type:        format.SymbolType(typ32), //nolint:gosec
		UserInfo:    int(userInfo32),
		Text:        text,
		RecordCount: int(recordCount32),
		ErrorCount:  int(errorCount32),
		HasSetText:  hasSetText32 != 0,
		Position:    position,
		Domain:      make([]symtab.DomainRef, dim),
		Comments:    comments,
	}, nil
}

// readDomainsSection parses the _DOMS_ section written by
// writeDomainsSection, returning each symbol's resolved DomainRef slice
// keyed by symbol number. symbols is used only to size each slice by
// dimension; it is not mutated.
func (h *Handle) readDomainsSection(symbols *symtab.Table) (map[int][]symtab.DomainRef, error) {
	if err := h.seekSection(h.header.Offsets[section.OffsetRelaxedDomain], section.MarkerDomains); err != nil {
		return nil, err
	}
	if h.header.Offsets[section.OffsetRelaxedDomain] == section.AbsentOffset {
		return nil, nil
	}

	nameCount, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}

	names := make([]string, nameCount)
	for i := range names {
		names[i], err = h.stream.ReadShortString()
		if err != nil {
			return nil, err
		}
	}

	symCount, err := h.stream.ReadInt32()
	if err != nil {
		return nil, err
	}

	result := make(map[int][]symtab.DomainRef, symCount)

	for s := 0; s < int(symCount); s++ {
		dim32, err := h.stream.ReadInt32()
		if err != nil {
			return nil, err
		}
		dim := int(dim32)

		refs := make([]symtab.DomainRef, dim)
		for i := 0; i < dim; i++ {
			kind32, err := h.stream.ReadInt32()
			if err != nil {
				return nil, err
			}

			switch domKind(kind32) {
			case domNone:
				refs[i] = symtab.DomainRef{SymbolNumber: -1}
			case domStrict:
				num, err := h.stream.ReadInt32()
				if err != nil {
					return nil, err
				}
				refs[i] = symtab.DomainRef{SymbolNumber: int(num)}
			case domPending:
				idx, err := h.stream.ReadInt32()
				if err != nil {
					return nil, err
				}
				refs[i] = symtab.DomainRef{Relaxed: true, PendingName: names[idx], SymbolNumber: -1}
			case domRelaxed:
				refs[i] = symtab.DomainRef{Relaxed: true, SymbolNumber: -1}
			default:
				return nil, fmt.Errorf("%w: unknown domain kind %d", errs.ErrCorrupt, kind32)
			}
		}

		result[s+1] = refs
	}

	if _, err := h.stream.ReadShortString(); err != nil {
		return nil, err
	}

	return result, nil
}
