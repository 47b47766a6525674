package gdx

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/symtab"
)

// AddAlias registers aliasName as an alias of aliasFor, an existing
// symbol name (or "*" for the universe). The new symbol carries the
// aliased symbol's number in UserInfo and no data of its own (spec.md
// §3: "Aliases carry the aliased symbol's index in user-info").
func (h *Handle) AddAlias(aliasName, aliasFor string) error {
	if h.st != stateOpen {
		return h.wrongMode("AddAlias called outside the Open state")
	}

	target := 0
	dim := 1
	if aliasFor != "*" {
		num, ok := h.symbols.FindByName(aliasFor)
		if !ok {
			return h.fail(fmt.Errorf("%w: alias target %q not found", errs.ErrBadSymbolNumber, aliasFor))
		}
		sym, _ := h.symbols.Get(num)
		target = num
		dim = sym.Dim
	}

	number, err := h.symbols.Add(aliasName, dim, format.Alias, target, "")
	if err != nil {
		return h.fail(err)
	}

	return h.fail(h.symbols.MarkWritten(number, 0, 0, false, 0))
}

// FindSymbol resolves name to its 1-based symbol number, 0 for the
// universe set "*".
func (h *Handle) FindSymbol(name string) (number int, ok bool) {
	if name == "*" {
		return 0, true
	}

	return h.symbols.FindByName(name)
}

// SymbolInfo returns the name, dimension and type of symbol number.
func (h *Handle) SymbolInfo(number int) (name string, dim int, typ format.SymbolType, err error) {
	if number == 0 {
		u := symtab.Universe()
		return u.Name, u.Dim, u.Type, nil
	}

	sym, ok := h.symbols.Get(number)
	if !ok {
		return "", 0, 0, h.fail(fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number))
	}

	return sym.Name, sym.Dim, sym.Type, nil
}

// SymbolInfoX returns the extended metadata spec.md §3 lists beyond the
// basic name/dim/type triple.
func (h *Handle) SymbolInfoX(number int) (recordCount, userInfo int, text string, err error) {
	sym, ok := h.symbols.Get(number)
	if !ok {
		return 0, 0, "", h.fail(fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number))
	}

	return sym.RecordCount, sym.UserInfo, sym.Text, nil
}

// SymbolDim returns symbol number's dimension.
func (h *Handle) SymbolDim(number int) (int, error) {
	if number == 0 {
		return 1, nil
	}

	sym, ok := h.symbols.Get(number)
	if !ok {
		return 0, h.fail(fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number))
	}

	return sym.Dim, nil
}

// SymbolAddComment appends a comment line to symbol number (append-only,
// spec.md §4.6).
func (h *Handle) SymbolAddComment(number int, line string) error {
	return h.fail(h.symbols.AddComment(number, line))
}

// SymbolGetComment returns the idx'th (0-based) comment line for symbol
// number.
func (h *Handle) SymbolGetComment(number, idx int) (string, error) {
	sym, ok := h.symbols.Get(number)
	if !ok {
		return "", h.fail(fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number))
	}
	if idx < 0 || idx >= len(sym.Comments) {
		return "", h.fail(fmt.Errorf("symtab: comment index %d out of range", idx))
	}

	return sym.Comments[idx], nil
}

// SymbolSetDomain sets symbol number's per-dimension domain links by
// parent set name. "*" means the universe set. A name that does not yet
// resolve to a known symbol is recorded as a pending strict link,
// resolved at Close (spec.md §9).
func (h *Handle) SymbolSetDomain(number int, domainNames []string) error {
	links, err := h.resolveDomainNames(number, domainNames, false)
	if err != nil {
		return h.fail(err)
	}

	if err := h.symbols.SetDomain(number, links); err != nil {
		return h.fail(err)
	}

	if h.writeSess != nil && h.writeSymbol == number {
		h.writeSess.SetDomainLinks(links)
	}

	return nil
}

// SymbolSetDomainX is the relaxed counterpart of SymbolSetDomain: names
// are stored as intended-parent metadata without ever being checked
// against a parent's membership, even if a symbol with that name exists
// (spec.md §3's "DomainLink ... relaxed").
func (h *Handle) SymbolSetDomainX(number int, domainNames []string) error {
	links, err := h.resolveDomainNames(number, domainNames, true)
	if err != nil {
		return h.fail(err)
	}

	if err := h.symbols.SetDomain(number, links); err != nil {
		return h.fail(err)
	}

	if h.writeSess != nil && h.writeSymbol == number {
		h.writeSess.SetDomainLinks(links)
	}

	return nil
}

func (h *Handle) resolveDomainNames(number int, domainNames []string, relaxed bool) ([]symtab.DomainRef, error) {
	sym, ok := h.symbols.Get(number)
	if !ok {
		return nil, fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number)
	}
	if len(domainNames) != sym.Dim {
		return nil, fmt.Errorf("%w: domain length %d != dimension %d", errs.ErrBadDimension, len(domainNames), sym.Dim)
	}

	links := make([]symtab.DomainRef, sym.Dim)
	for i, name := range domainNames {
		switch {
		case name == "" || name == "*":
			links[i] = symtab.DomainRef{SymbolNumber: 0}
		case relaxed:
			links[i] = symtab.DomainRef{Relaxed: true, PendingName: name, SymbolNumber: -1}
		default:
			if num, found := h.symbols.FindByName(name); found {
				links[i] = symtab.DomainRef{SymbolNumber: num}
			} else {
				links[i] = symtab.DomainRef{SymbolNumber: -1, PendingName: name}
			}
		}
	}

	return links, nil
}

// SymbolGetDomain returns the domain parent names for symbol number:
// "*" for the universe, the recorded parent name for a link given by a
// name that is pending or relaxed, and "" for an unresolved link with no
// recorded name.
func (h *Handle) SymbolGetDomain(number int) ([]string, error) {
	sym, ok := h.symbols.Get(number)
	if !ok {
		return nil, h.fail(fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number))
	}

	names := make([]string, sym.Dim)
	for i, link := range sym.Domain {
		names[i] = h.domainRefName(link)
	}

	return names, nil
}

// SymbolGetDomainX is SymbolGetDomain plus a per-dimension relaxed flag.
func (h *Handle) SymbolGetDomainX(number int) (names []string, relaxed []bool, err error) {
	sym, ok := h.symbols.Get(number)
	if !ok {
		return nil, nil, h.fail(fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number))
	}

	names = make([]string, sym.Dim)
	relaxed = make([]bool, sym.Dim)
	for i, link := range sym.Domain {
		names[i] = h.domainRefName(link)
		relaxed[i] = link.Relaxed
	}

	return names, relaxed, nil
}

func (h *Handle) domainRefName(link symtab.DomainRef) string {
	switch {
	case link.PendingName != "":
		return link.PendingName
	case link.SymbolNumber == 0:
		return "*"
	case link.SymbolNumber > 0:
		if sym, ok := h.symbols.Get(link.SymbolNumber); ok {
			return sym.Name
		}
	}

	return ""
}

// SymbIndxMaxLength returns the longest registered symbol name's length.
func (h *Handle) SymbIndxMaxLength() int { return h.symbols.MaxNameLen() }

// CurrentDim returns the dimension of the symbol currently being written
// or read, or -1 if no data session is active.
func (h *Handle) CurrentDim() int {
	switch {
	case h.writeSess != nil:
		return h.writeSess.Dim()
	case h.readSess != nil:
		return h.symbolDimOf(h.readSymbol)
	default:
		return -1
	}
}

func (h *Handle) symbolDimOf(number int) int {
	if number == 0 {
		return 1
	}

	sym, ok := h.symbols.Get(number)
	if !ok {
		return -1
	}

	return sym.Dim
}

// AddSetText interns text into the set-text pool, returning its index
// (spec.md §4.4). Valid in the Open state and while a symbol's data is
// being written.
func (h *Handle) AddSetText(text string) (int, error) {
	if h.st != stateOpen && h.st != stateWriting {
		return 0, h.wrongMode("AddSetText called with no file open")
	}

	return h.settexts.AddText(text), nil
}

// GetElemText returns the text and node number at set-text index idx.
func (h *Handle) GetElemText(idx int) (text string, nodeNr int, err error) {
	text, nodeNr, ok := h.settexts.GetText(idx)
	if !ok {
		return "", 0, h.fail(fmt.Errorf("%w: index %d", errs.ErrSetTextNotFound, idx))
	}

	return text, nodeNr, nil
}

// SetHasText reports whether symbol number carries any non-empty
// set-text indices (spec.md §3's Symbol.HasSetText).
func (h *Handle) SetHasText(number int) (bool, error) {
	sym, ok := h.symbols.Get(number)
	if !ok {
		return false, h.fail(fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number))
	}

	return sym.HasSetText, nil
}

// SetTextNodeNr overwrites the node number of set-text entry idx without
// touching its text (spec.md §4.4).
func (h *Handle) SetTextNodeNr(idx, nodeNr int) error {
	if !h.settexts.SetNodeNr(idx, nodeNr) {
		return h.fail(fmt.Errorf("%w: index %d", errs.ErrSetTextNotFound, idx))
	}

	return nil
}
