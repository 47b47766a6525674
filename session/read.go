package session

import (
	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/filter"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/reccodec"
	"github.com/gdxlib/gdx/specval"
	"github.com/gdxlib/gdx/uel"
)

// DimAction is a per-dimension instruction for a filtered read (spec.md
// §4.8): either filter.DomcUnmapped, filter.DomcExpand, or a
// non-negative registered filter number.
type DimAction int

// ReadSession iterates one symbol's record run, already fully decoded
// at construction time (spec.md §9 accepts whole-symbol buffering over
// true streaming, matching RecordCodec's own all-at-once shape).
type ReadSession struct {
	mode    Mode
	dim     int
	uels    *uel.Table
	records []reccodec.Record
	pos     int
}

// NewReadSession decodes symbolNumber's entire record run from r and
// prepares it for iteration in mode. actions and filters are consulted
// in any mode whenever actions is non-nil (a filtered read); pass a nil
// actions slice for an unfiltered read.
func NewReadSession(r reccodec.Reader, marker string, dim int, symType format.SymbolType, sv specval.Table, mode Mode, uels *uel.Table, actions []DimAction, filters *filter.Registry) (*ReadSession, error) {
	keep, err := keepFunc(dim, uels, actions, filters)
	if err != nil {
		return nil, err
	}

	records, err := reccodec.Decode(r, marker, symType, sv, keep)
	if err != nil {
		return nil, err
	}

	return &ReadSession{mode: mode, dim: dim, uels: uels, records: records}, nil
}

func keepFunc(dim int, uels *uel.Table, actions []DimAction, filters *filter.Registry) (func(key []uint32) bool, error) {
	if actions == nil {
		return nil, nil
	}
	if len(actions) != dim {
		return nil, errs.ErrBadDimension
	}

	return func(key []uint32) bool {
		for i, action := range actions {
			switch {
			case int(action) == filter.DomcUnmapped:
				continue
			case int(action) == filter.DomcExpand:
				continue
			default:
				_, userMap, ok := uels.GetByRaw(int32(key[i])) //nolint:gosec
				if !ok {
					return false
				}
				allowed, err := filters.Contains(int(action), userMap)
				if err != nil || !allowed {
					return false
				}
			}
		}

		return true
	}, nil
}

// NewReadSessionFromRecords wraps an already-materialized record list
// (e.g. the universe symbol's synthetic "every UEL" run, which has no
// data section to decode) for iteration through the normal
// ReadNextRaw/Mapped/String API.
func NewReadSessionFromRecords(mode Mode, dim int, uels *uel.Table, records []reccodec.Record) *ReadSession {
	return &ReadSession{mode: mode, dim: dim, uels: uels, records: records}
}

// Mode returns the session's locked calling convention.
func (s *ReadSession) Mode() Mode { return s.mode }

// Count returns the number of records available for iteration.
func (s *ReadSession) Count() int { return len(s.records) }

// ReadNextRaw returns the next record's key as raw UEL numbers. ok is
// false once the run is exhausted.
func (s *ReadSession) ReadNextRaw() (key []uint32, values []float64, ok bool) {
	if s.mode != ModeRaw {
		return nil, nil, false
	}

	return s.next()
}

// ReadNextMapped returns the next record's key as user-map indices,
// uel.Unmapped for any raw number with no user map assigned.
func (s *ReadSession) ReadNextMapped() (key []int32, values []float64, ok bool) {
	if s.mode != ModeMapped {
		return nil, nil, false
	}

	raw, values, ok := s.next()
	if !ok {
		return nil, nil, false
	}

	mapped := make([]int32, len(raw))
	for i, r := range raw {
		_, um, found := s.uels.GetByRaw(int32(r)) //nolint:gosec
		if !found {
			um = uel.Unmapped
		}
		mapped[i] = um
	}

	return mapped, values, true
}

// ReadNextString returns the next record's key as UEL name strings.
func (s *ReadSession) ReadNextString() (key []string, values []float64, ok bool) {
	if s.mode != ModeString {
		return nil, nil, false
	}

	raw, values, ok := s.next()
	if !ok {
		return nil, nil, false
	}

	names := make([]string, len(raw))
	for i, r := range raw {
		name, _, found := s.uels.GetByRaw(int32(r)) //nolint:gosec
		if !found {
			name = ""
		}
		names[i] = name
	}

	return names, values, true
}

func (s *ReadSession) next() ([]uint32, []float64, bool) {
	if s.pos >= len(s.records) {
		return nil, nil, false
	}

	rec := s.records[s.pos]
	s.pos++

	return rec.Key, rec.Values, true
}
