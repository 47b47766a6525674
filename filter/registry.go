// Package filter implements FilterSet: per-handle named filters used by
// filtered reads (spec.md §4.8). A filter is a bitset over user-map
// indices; it never outlives the session that created it.
package filter

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/internal/bitset"
)

// Per-dimension filtered-read actions that are not a filter number
// (spec.md §4.8).
const (
	DomcUnmapped = -2 // skip this dimension during mapping
	DomcExpand   = -1 // accept any UEL on this dimension; no user-map nr is assigned to an unmapped UEL
)

// Set is one named filter: a frozen-on-Done bitset over user-map
// indices.
type Set struct {
	allowed *bitset.Set
	frozen  bool
}

// Registry holds every filter defined for the current handle, keyed by
// filter number.
type Registry struct {
	filters map[int]*Set
}

// NewRegistry returns an empty filter registry.
func NewRegistry() *Registry {
	return &Registry{filters: make(map[int]*Set)}
}

// Exists reports whether nr has been registered (FilterExists).
func (r *Registry) Exists(nr int) bool {
	_, ok := r.filters[nr]
	return ok
}

// RegisterStart begins defining filter nr (FilterRegisterStart). Fails
// if nr is already registered.
func (r *Registry) RegisterStart(nr int) error {
	if r.Exists(nr) {
		return fmt.Errorf("%w: filter %d", errs.ErrFilterAlreadyExists, nr)
	}

	r.filters[nr] = &Set{allowed: bitset.New()}

	return nil
}

// Register adds userMapIdx to the filter currently being defined
// (FilterRegister).
func (r *Registry) Register(nr int, userMapIdx int32) error {
	set, ok := r.filters[nr]
	if !ok || set.frozen {
		return fmt.Errorf("%w: filter %d", errs.ErrFilterUnknown, nr)
	}

	set.allowed.Set(int(userMapIdx))

	return nil
}

// RegisterDone freezes filter nr (FilterRegisterDone).
func (r *Registry) RegisterDone(nr int) error {
	set, ok := r.filters[nr]
	if !ok {
		return fmt.Errorf("%w: filter %d", errs.ErrFilterUnknown, nr)
	}

	set.frozen = true

	return nil
}

// Contains reports whether userMapIdx is allowed by filter nr. Used by
// a filtered read's per-dimension action when the action is a filter
// number rather than DomcUnmapped/DomcExpand.
func (r *Registry) Contains(nr int, userMapIdx int32) (bool, error) {
	set, ok := r.filters[nr]
	if !ok {
		return false, fmt.Errorf("%w: filter %d", errs.ErrFilterUnknown, nr)
	}

	return set.allowed.Test(int(userMapIdx)), nil
}
