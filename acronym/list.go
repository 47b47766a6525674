// Package acronym implements AcronymList: the file-scoped namespace of
// named symbolic constants that can appear in a record's double value
// slot, encoded via package specval (spec.md §3, §4.5).
//
// Two mutation paths coexist, matching the spec: an explicit user Add,
// and implicit allocation when the record codec decodes a value whose
// bit pattern carries an acronym number not yet seen in this session
// (ResolveImplicit).
package acronym

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
)

// Acronym is one (name, text, index) triple plus its file-scoped nr.
type Acronym struct {
	Name  string
	Text  string
	Index int
	Nr    int
}

// List is the per-file ordered acronym table.
type List struct {
	items  []Acronym
	byName map[string]int // name -> position in items
	byNr   map[int]int    // nr -> position in items
	nextNr int
}

// NewList returns an empty acronym list; the first acronym added gets
// nr 1.
func NewList() *List {
	return &List{
		byName: make(map[string]int),
		byNr:   make(map[int]int),
		nextNr: 1,
	}
}

// Add registers name/text/index as a new acronym, assigning it the next
// file-scoped nr. Fails with errs.ErrAcronymCollision if name is already
// defined.
func (l *List) Add(name, text string, index int) (nr int, err error) {
	if _, exists := l.byName[name]; exists {
		return 0, fmt.Errorf("%w: %q", errs.ErrAcronymCollision, name)
	}

	nr = l.nextNr
	l.nextNr++

	pos := len(l.items)
	l.items = append(l.items, Acronym{Name: name, Text: text, Index: index, Nr: nr})
	l.byName[name] = pos
	l.byNr[nr] = pos

	return nr, nil
}

// ResolveImplicit returns the acronym for nr, allocating an unnamed
// placeholder entry (spec.md §4.5's "implicit allocation by the codec")
// if nr has not been seen in this file yet.
func (l *List) ResolveImplicit(nr int) Acronym {
	if pos, ok := l.byNr[nr]; ok {
		return l.items[pos]
	}

	pos := len(l.items)
	a := Acronym{Nr: nr}
	l.items = append(l.items, a)
	l.byNr[nr] = pos

	if nr >= l.nextNr {
		l.nextNr = nr + 1
	}

	return a
}

// ByName returns the acronym registered under name.
func (l *List) ByName(name string) (Acronym, bool) {
	pos, ok := l.byName[name]
	if !ok {
		return Acronym{}, false
	}

	return l.items[pos], true
}

// ByNr returns the acronym with file-scoped number nr.
func (l *List) ByNr(nr int) (Acronym, bool) {
	pos, ok := l.byNr[nr]
	if !ok {
		return Acronym{}, false
	}

	return l.items[pos], true
}

// GetInfo returns the pos'th acronym (0-based, insertion order), for
// AcronymGetInfo's index-based iteration.
func (l *List) GetInfo(pos int) (Acronym, bool) {
	if pos < 0 || pos >= len(l.items) {
		return Acronym{}, false
	}

	return l.items[pos], true
}

// SetInfo overwrites the name/text/index of the pos'th acronym, leaving
// its nr untouched (AcronymSetInfo).
func (l *List) SetInfo(pos int, name, text string, index int) error {
	if pos < 0 || pos >= len(l.items) {
		return fmt.Errorf("%w: acronym position %d", errs.ErrBadSymbolNumber, pos)
	}

	old := l.items[pos].Name
	if old != "" {
		delete(l.byName, old)
	}

	l.items[pos].Name = name
	l.items[pos].Text = text
	l.items[pos].Index = index

	if name != "" {
		l.byName[name] = pos
	}

	return nil
}

// Count returns the number of acronyms registered (explicit or implicit).
func (l *List) Count() int { return len(l.items) }

// NextNr returns the nr that will be assigned to the next explicit Add.
func (l *List) NextNr() int { return l.nextNr }

// SetNextNr applies a user hint for the next assigned nr. Per the
// original's AcronymNextNr precedence (SPEC_FULL.md item 4), a hint
// lower than the current counter is ignored rather than erroring.
func (l *List) SetNextNr(hint int) {
	if hint > l.nextNr {
		l.nextNr = hint
	}
}

// All returns the registered acronyms in insertion order, for section
// serialization.
func (l *List) All() []Acronym { return l.items }

// LoadRaw repopulates a list from a section read.
func LoadRaw(items []Acronym) *List {
	l := NewList()
	for _, a := range items {
		pos := len(l.items)
		l.items = append(l.items, a)
		if a.Name != "" {
			l.byName[a.Name] = pos
		}
		l.byNr[a.Nr] = pos
		if a.Nr >= l.nextNr {
			l.nextNr = a.Nr + 1
		}
	}

	return l
}
