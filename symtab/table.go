// Package symtab implements SymbolTable: the name-and-number-keyed
// catalog of symbol metadata (spec.md §3, §4.6). Insertion order
// determines a symbol's dense 1-based number; symbol 0 is the synthetic
// "universe" set and is never stored here (it is handled specially by
// the gdx facade).
package symtab

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/format"
)

// MaxNameLength is the longest a symbol name may be.
const MaxNameLength = 63

// MaxTextLength is the longest an explanatory text may be.
const MaxTextLength = 255

// MaxComments is the implementation-chosen cap on comment lines per
// symbol (spec.md §3: "up to ≈10 comment lines").
const MaxComments = 10

var identifierRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateName reports whether name is a legal GDX identifier.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLength || !identifierRE.MatchString(name) {
		return fmt.Errorf("%w: %q", errs.ErrBadName, name)
	}

	return nil
}

// DomainRef is one dimension's domain link (spec.md §3's "DomainLink").
// A strict link checks writes against the parent's membership; a
// relaxed link (or one whose parent name never resolved) records only
// the intended parent name.
type DomainRef struct {
	SymbolNumber int    // resolved parent symbol number, 0 = universe, -1 = unresolved
	PendingName  string // parent name, used for deferred resolution at Close
	Relaxed      bool
}

// Symbol is one catalog entry (spec.md §3's "Symbol").
type Symbol struct {
	Number      int
	Name        string
	Dim         int
	Type        format.SymbolType
	UserInfo    int
	Text        string
	RecordCount int
	ErrorCount  int
	HasSetText  bool
	Position    int64
	Domain      []DomainRef
	Comments    []string

	written bool // true once Position/RecordCount are fixed by DataWriteDone
}

// Table is the per-file symbol catalog.
type Table struct {
	symbols []*Symbol // symbols[i] has Number == i+1
	byName  map[string]int
}

// NewTable returns an empty catalog.
func NewTable() *Table {
	return &Table{byName: make(map[string]int)}
}

// normalize matches spec.md §4.6's "case lookup normalized by
// uppercasing ASCII letters": names are stored with their original
// case, but FindByName compares case-insensitively.
func normalize(name string) string { return strings.ToUpper(name) }

// Add registers a new symbol, returning its dense 1-based number.
func (t *Table) Add(name string, dim int, typ format.SymbolType, userInfo int, text string) (int, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	if dim < 0 || dim > 20 {
		return 0, fmt.Errorf("%w: dimension %d", errs.ErrBadDimension, dim)
	}
	if len(text) > MaxTextLength {
		return 0, fmt.Errorf("symtab: text exceeds %d characters", MaxTextLength)
	}
	if _, exists := t.byName[normalize(name)]; exists {
		return 0, fmt.Errorf("%w: symbol %q already defined", errs.ErrBadName, name)
	}

	number := len(t.symbols) + 1
	sym := &Symbol{
		Number:   number,
		Name:     name,
		Dim:      dim,
		Type:     typ,
		UserInfo: userInfo,
		Text:     text,
		Domain:   make([]DomainRef, dim),
	}
	t.symbols = append(t.symbols, sym)
	t.byName[normalize(name)] = number

	return number, nil
}

// FindByName resolves name to a symbol number, case-insensitively.
func (t *Table) FindByName(name string) (number int, ok bool) {
	number, ok = t.byName[normalize(name)]
	return number, ok
}

// Get returns the symbol with the given 1-based number.
func (t *Table) Get(number int) (*Symbol, bool) {
	if number < 1 || number > len(t.symbols) {
		return nil, false
	}

	return t.symbols[number-1], true
}

// SetDomain replaces the domain links of an existing symbol. It does not
// check how often it is called or whether the symbol's data has already
// been written; Close-time domain resolution and section loading call it
// after that point.
func (t *Table) SetDomain(number int, domain []DomainRef) error {
	sym, ok := t.Get(number)
	if !ok {
		return fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number)
	}
	if len(domain) != sym.Dim {
		return fmt.Errorf("%w: domain length %d != dimension %d", errs.ErrBadDimension, len(domain), sym.Dim)
	}

	sym.Domain = domain

	return nil
}

// AddComment appends a comment line to an existing symbol (append-only,
// capped at MaxComments).
func (t *Table) AddComment(number int, line string) error {
	sym, ok := t.Get(number)
	if !ok {
		return fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number)
	}
	if len(sym.Comments) >= MaxComments {
		return fmt.Errorf("symtab: symbol %q already has %d comments", sym.Name, MaxComments)
	}

	sym.Comments = append(sym.Comments, line)

	return nil
}

// MarkWritten fixes a symbol's record count, error count, set-text flag
// and data position once its DataWrite*Done has run. A symbol cannot be
// modified (beyond comments and domain) after this point.
func (t *Table) MarkWritten(number int, recordCount, errorCount int, hasSetText bool, position int64) error {
	sym, ok := t.Get(number)
	if !ok {
		return fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number)
	}

	sym.RecordCount = recordCount
	sym.ErrorCount = errorCount
	sym.HasSetText = hasSetText
	sym.Position = position
	sym.written = true

	return nil
}

// Written reports whether MarkWritten has run for number.
func (t *Table) Written(number int) bool {
	sym, ok := t.Get(number)
	return ok && sym.written
}

// Count returns the number of registered symbols (excluding the
// universe symbol 0).
func (t *Table) Count() int { return len(t.symbols) }

// MaxNameLen returns the longest registered symbol name's length.
func (t *Table) MaxNameLen() int {
	max := 0
	for _, s := range t.symbols {
		if len(s.Name) > max {
			max = len(s.Name)
		}
	}

	return max
}

// All returns every registered symbol in number order, for section
// serialization.
func (t *Table) All() []*Symbol { return t.symbols }

// LoadRaw repopulates a catalog from a section read.
func LoadRaw(symbols []*Symbol) *Table {
	t := NewTable()
	for _, s := range symbols {
		t.symbols = append(t.symbols, s)
		t.byName[normalize(s.Name)] = s.Number
	}

	return t
}

// Universe returns the synthetic, read-only symbol 0: the set of all
// UELs in the file (spec.md §3).
func Universe() *Symbol {
	return &Symbol{Number: 0, Name: "*", Dim: 1, Type: format.Set, written: true}
}
