package gdx

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/session"
)

// FilterExists reports whether filter nr has been registered.
func (h *Handle) FilterExists(nr int) bool { return h.filters.Exists(nr) }

// FilterRegisterStart begins defining filter nr.
func (h *Handle) FilterRegisterStart(nr int) error {
	return h.fail(h.filters.RegisterStart(nr))
}

// FilterRegister adds userMapIdx to the filter currently being defined.
func (h *Handle) FilterRegister(nr int, userMapIdx int32) error {
	return h.fail(h.filters.Register(nr, userMapIdx))
}

// FilterRegisterDone freezes filter nr, making it usable by
// DataReadFilteredStart.
func (h *Handle) FilterRegisterDone(nr int) error {
	return h.fail(h.filters.RegisterDone(nr))
}

// GetDomainElements returns the raw UEL numbers observed as members of
// symbolNumber's set, ascending, or ok=false if that symbol has never
// had its membership bitmap observed (spec.md §4.7).
func (h *Handle) GetDomainElements(symbolNumber int) (raw []uint32, ok bool) {
	return h.checker.Members(symbolNumber)
}

// DataReadFilteredStart begins a raw-mode read of symbol number,
// restricting returned records per actions: for dimension i, actions[i]
// is filter.DomcUnmapped, filter.DomcExpand, or a registered filter
// number (spec.md §4.8).
func (h *Handle) DataReadFilteredStart(number int, actions []int) (int, error) {
	if len(actions) == 0 {
		return 0, h.fail(fmt.Errorf("%w: DataReadFilteredStart requires one action per dimension", errs.ErrBadDimension))
	}

	dimActions := make([]session.DimAction, len(actions))
	for i, a := range actions {
		dimActions[i] = session.DimAction(a)
	}

	return h.dataReadStart(session.ModeRaw, number, dimActions)
}
