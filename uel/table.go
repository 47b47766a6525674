// Package uel implements UelTable: the interned, insertion-ordered set
// of Unique Element Labels a GDX file carries, with the three numbering
// schemes spec.md §3 requires to coexist (raw, user-map, string-visible).
//
// Lookup by name is sharded through a hash bucket (internal/hash's
// xxhash, the same role it plays in the teacher's blob package) before
// falling back to an exact string compare, avoiding a second pass of Go's
// own map hashing on the hot FindByName path.
package uel

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/internal/hash"
)

// MaxNameLength is the longest a UEL name may be (spec.md §3).
const MaxNameLength = 63

// Unmapped is the user-map value meaning "no user map assigned".
const Unmapped int32 = -1

// Table is the per-file, monotone-growing UEL interning table. Not safe
// for concurrent use (spec.md §5: a handle is single-threaded).
type Table struct {
	names    []string // 1-based: names[raw-1]
	userMaps []int32  // 1-based: userMaps[raw-1], Unmapped if none

	byHash    map[uint64][]int32 // name hash -> candidate raw numbers
	byUserMap map[int32]int32    // user map value -> raw number
}

// NewTable returns an empty UEL table.
func NewTable() *Table {
	return &Table{
		byHash:    make(map[uint64][]int32),
		byUserMap: make(map[int32]int32),
	}
}

func validateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return fmt.Errorf("%w: %q", errs.ErrBadUEL, name)
	}

	return nil
}

func (t *Table) findRaw(name string) (int32, bool) {
	h := hash.ID(name)
	for _, raw := range t.byHash[h] {
		if t.names[raw-1] == name {
			return raw, true
		}
	}

	return 0, false
}

func (t *Table) insert(name string, userMap int32) int32 {
	t.names = append(t.names, name)
	t.userMaps = append(t.userMaps, userMap)
	raw := int32(len(t.names)) //nolint:gosec

	h := hash.ID(name)
	t.byHash[h] = append(t.byHash[h], raw)

	if userMap != Unmapped {
		t.byUserMap[userMap] = raw
	}

	return raw
}

// RegisterRaw assigns the next dense raw number to name, which must not
// already be present. No user map is recorded.
func (t *Table) RegisterRaw(name string) (int32, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	if _, ok := t.findRaw(name); ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrDuplicateUEL, name)
	}

	return t.insert(name, Unmapped), nil
}

// RegisterMap assigns the next raw number to name and records userMap.
// Fails with errs.ErrUelMapCollision if userMap is already bound to a
// different name.
func (t *Table) RegisterMap(userMap int32, name string) (int32, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	if _, ok := t.findRaw(name); ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrDuplicateUEL, name)
	}
	if userMap != Unmapped {
		if existing, ok := t.byUserMap[userMap]; ok {
			return 0, fmt.Errorf("%w: user map %d already bound to %q", errs.ErrUelMapCollision, userMap, t.names[existing-1])
		}
	}

	return t.insert(name, userMap), nil
}

// RegisterStr returns name's existing raw number if already registered,
// otherwise registers it unmapped and returns the new number. Idempotent.
func (t *Table) RegisterStr(name string) (int32, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	if raw, ok := t.findRaw(name); ok {
		return raw, nil
	}

	return t.insert(name, Unmapped), nil
}

// FindByName returns name's raw number and user map, or ok=false if it
// is not registered.
func (t *Table) FindByName(name string) (raw int32, userMap int32, ok bool) {
	r, found := t.findRaw(name)
	if !found {
		return 0, 0, false
	}

	return r, t.userMaps[r-1], true
}

// GetByRaw returns the name and user map for raw number raw (1-based).
func (t *Table) GetByRaw(raw int32) (name string, userMap int32, ok bool) {
	if raw < 1 || int(raw) > len(t.names) {
		return "", 0, false
	}

	return t.names[raw-1], t.userMaps[raw-1], true
}

// GetByUserMap resolves a user-map value back to its raw number.
func (t *Table) GetByUserMap(userMap int32) (raw int32, ok bool) {
	raw, ok = t.byUserMap[userMap]
	return raw, ok
}

// Rename changes oldName's entry to newName, preserving its raw number
// and user map. Fails if oldName is unknown or newName already exists.
func (t *Table) Rename(oldName, newName string) error {
	if err := validateName(newName); err != nil {
		return err
	}

	raw, ok := t.findRaw(oldName)
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrBadUEL, oldName)
	}
	if _, exists := t.findRaw(newName); exists {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateUEL, newName)
	}

	oldHash := hash.ID(oldName)
	bucket := t.byHash[oldHash]
	for i, r := range bucket {
		if r == raw {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	t.byHash[oldHash] = bucket

	t.names[raw-1] = newName
	newHash := hash.ID(newName)
	t.byHash[newHash] = append(t.byHash[newHash], raw)

	return nil
}

// MaxLength returns the longest registered name's length, 0 if empty.
func (t *Table) MaxLength() int {
	max := 0
	for _, n := range t.names {
		if len(n) > max {
			max = len(n)
		}
	}

	return max
}

// Count returns the number of registered UELs.
func (t *Table) Count() int { return len(t.names) }

// All returns the registered names in raw-number order, 1-based index
// i corresponds to names[i-1]. Used by the symbol/UEL section writer.
func (t *Table) All() []string { return t.names }

// UserMaps returns the registered user-map values in raw-number order,
// parallel to All().
func (t *Table) UserMaps() []int32 { return t.userMaps }

// LoadRaw repopulates the table from a section read (raw numbers are
// assigned in the order names appear, matching how UELRegisterRaw built
// them on write). userMaps may be nil if the file carries none.
func LoadRaw(names []string, userMaps []int32) *Table {
	t := NewTable()
	for i, name := range names {
		um := Unmapped
		if userMaps != nil {
			um = userMaps[i]
		}
		t.insert(name, um)
	}

	return t
}
