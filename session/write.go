// Package session implements WriteSession and ReadSession: the state
// machines that constrain one symbol's data access to the
// Start/Write-or-Read*/Done order spec.md §4.9 requires, across the
// three calling conventions (raw, mapped, string).
//
// The three write modes are one generic encoder parameterised by a
// key-translator, per spec.md §9's design note: WriteRaw takes raw UEL
// numbers directly, WriteMapped resolves user-map indices through
// uel.Table, and WriteString interns-or-registers UEL names on the
// fly. All three funnel into the same buffered record list, sorted (if
// needed) and handed to reccodec.Encode on Done.
package session

import (
	"fmt"
	"sort"

	"github.com/gdxlib/gdx/domain"
	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/reccodec"
	"github.com/gdxlib/gdx/specval"
	"github.com/gdxlib/gdx/symtab"
	"github.com/gdxlib/gdx/uel"
)

// Mode identifies which of the three calling conventions a write (or
// read) session is locked to; it is fixed when the session is created.
type Mode uint8

const (
	ModeRaw Mode = iota
	ModeMapped
	ModeString
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeMapped:
		return "mapped"
	case ModeString:
		return "string"
	default:
		return "unknown"
	}
}

// MaxRetainedErrors caps how many domain-violating records a
// WriteSession keeps for DataErrorRecord iteration (spec.md §4.7:
// "historically 11 retained records plus a running count").
const MaxRetainedErrors = 11

// WriteSession accumulates one symbol's records across a
// DataWrite{Raw,Map,Str}Start/.../Done triple.
type WriteSession struct {
	mode         Mode
	symbolNumber int
	dim          int
	symType      format.SymbolType
	domainLinks  []symtab.DomainRef

	uels     *uel.Table
	checker  *domain.Checker
	sv       specval.Table

	records      []reccodec.Record
	lastRawKey   []uint32 // raw mode only: last accepted key, for the ordering check
	errorRecords []reccodec.Record
	errorCount   int
	hasSetText   bool
}

// NewWriteSession begins writing symbolNumber, whose shape and domain
// links are already registered in the symbol table.
func NewWriteSession(mode Mode, symbolNumber, dim int, symType format.SymbolType, domainLinks []symtab.DomainRef, uels *uel.Table, checker *domain.Checker, sv specval.Table) *WriteSession {
	return &WriteSession{
		mode:         mode,
		symbolNumber: symbolNumber,
		dim:          dim,
		symType:      symType,
		domainLinks:  domainLinks,
		uels:         uels,
		checker:      checker,
		sv:           sv,
	}
}

// Mode returns the session's locked calling convention.
func (s *WriteSession) Mode() Mode { return s.mode }

// SymbolNumber returns the symbol this session is writing.
func (s *WriteSession) SymbolNumber() int { return s.symbolNumber }

// Dim returns the symbol's dimension.
func (s *WriteSession) Dim() int { return s.dim }

// SetDomainLinks replaces the session's domain links, used when
// SymbolSetDomain[X] is called after DataWrite*Start but before any
// records have been written (spec.md §9's deferred domain resolution
// applies to symbols whose links are only known once writing begins).
func (s *WriteSession) SetDomainLinks(links []symtab.DomainRef) { s.domainLinks = links }

// ErrorCount returns the total number of domain-violating records seen
// so far, uncapped (unlike ErrorRecords, which is capped at
// MaxRetainedErrors).
func (s *WriteSession) ErrorCount() int { return s.errorCount }

func (s *WriteSession) checkDomain(key []uint32) bool {
	ok := true

	for i, link := range s.domainLinks {
		if link.Relaxed || link.SymbolNumber < 0 {
			continue
		}
		if !s.checker.IsMember(link.SymbolNumber, key[i]) {
			ok = false
		}
	}

	return ok
}

func (s *WriteSession) accept(key []uint32, values []float64) error {
	if len(key) != s.dim {
		return fmt.Errorf("%w: key has %d components, symbol has dimension %d", errs.ErrBadDimension, len(key), s.dim)
	}

	rec := reccodec.Record{Key: key, Values: values}

	if !s.checkDomain(key) {
		s.errorCount++
		if len(s.errorRecords) < MaxRetainedErrors {
			s.errorRecords = append(s.errorRecords, rec)
		}
	}

	if s.symType == format.Set && len(values) > 0 && values[0] != 0 {
		s.hasSetText = true
	}

	s.records = append(s.records, rec)

	return nil
}

// WriteRaw appends a record whose key is already expressed as raw UEL
// numbers. Records must arrive in strictly increasing lexicographic
// order; a non-increasing key is rejected (not stored) with
// errs.ErrKeyOutOfOrder, matching the real format's "Data not sorted
// when writing raw" message (spec.md §8 scenario 2).
func (s *WriteSession) WriteRaw(key []uint32, values []float64) error {
	if s.mode != ModeRaw {
		return fmt.Errorf("%w: session is in %s mode", errs.ErrWrongMode, s.mode)
	}
	if len(key) != s.dim {
		return fmt.Errorf("%w: key has %d components, symbol has dimension %d", errs.ErrBadDimension, len(key), s.dim)
	}

	if s.lastRawKey != nil && !lexLess(s.lastRawKey, key) {
		return errs.ErrKeyOutOfOrder
	}

	if err := s.accept(append([]uint32(nil), key...), values); err != nil {
		return err
	}

	s.lastRawKey = key

	return nil
}

// WriteMapped appends a record whose key is expressed as caller-chosen
// user-map indices, resolved through uel.Table. Records may arrive out
// of order; WriteSession buffers and sorts them on Done.
func (s *WriteSession) WriteMapped(userKey []int32, values []float64) error {
	if s.mode != ModeMapped {
		return fmt.Errorf("%w: session is in %s mode", errs.ErrWrongMode, s.mode)
	}
	if len(userKey) != s.dim {
		return fmt.Errorf("%w: key has %d components, symbol has dimension %d", errs.ErrBadDimension, len(userKey), s.dim)
	}

	raw := make([]uint32, s.dim)
	for i, um := range userKey {
		r, ok := s.uels.GetByUserMap(um)
		if !ok {
			return fmt.Errorf("%w: user map index %d is not registered", errs.ErrBadUEL, um)
		}
		raw[i] = uint32(r) //nolint:gosec
	}

	return s.accept(raw, values)
}

// WriteString appends a record whose key is expressed as UEL name
// strings, auto-registering any name not yet seen (spec.md §4.9).
func (s *WriteSession) WriteString(strKey []string, values []float64) error {
	if s.mode != ModeString {
		return fmt.Errorf("%w: session is in %s mode", errs.ErrWrongMode, s.mode)
	}
	if len(strKey) != s.dim {
		return fmt.Errorf("%w: key has %d components, symbol has dimension %d", errs.ErrBadDimension, len(strKey), s.dim)
	}

	raw := make([]uint32, s.dim)
	for i, name := range strKey {
		r, err := s.uels.RegisterStr(name)
		if err != nil {
			return err
		}
		raw[i] = uint32(r) //nolint:gosec
	}

	return s.accept(raw, values)
}

func lexLess(a, b []uint32) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return false
}

// Done sorts (for mapped/string modes), encodes and writes the
// session's accumulated records to w, updates the domain checker's
// membership bitmap for Set-type symbols, and returns the final record
// and error counts for SymbolTable.MarkWritten.
func (s *WriteSession) Done(w reccodec.Writer, marker string) (recordCount, errorCount int, err error) {
	if s.mode != ModeRaw {
		sort.SliceStable(s.records, func(i, j int) bool {
			return lexLess(s.records[i].Key, s.records[j].Key)
		})

		deduped := s.records[:0]
		var prev []uint32
		for _, rec := range s.records {
			if prev != nil && equalKey(prev, rec.Key) {
				continue
			}
			deduped = append(deduped, rec)
			prev = rec.Key
		}
		s.records = deduped
	}

	if err := reccodec.Encode(w, marker, s.dim, s.symType, s.records, s.sv); err != nil {
		return 0, 0, err
	}

	if s.symType == format.Set {
		for _, rec := range s.records {
			for _, k := range rec.Key {
				s.checker.Observe(s.symbolNumber, k)
			}
		}
	}

	return len(s.records), s.errorCount, nil
}

func equalKey(a, b []uint32) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// HasSetText reports whether any record carried a non-zero set-text
// index (spec.md §3's Symbol.HasSetText flag).
func (s *WriteSession) HasSetText() bool { return s.hasSetText }

// ErrorRecords returns the retained domain-violating records (capped at
// MaxRetainedErrors), for DataErrorRecord iteration.
func (s *WriteSession) ErrorRecords() []reccodec.Record { return s.errorRecords }
