package gdx

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
)

// UELRegisterRawStart begins a raw-mode UEL registration batch: names are
// assigned the next dense raw number in call order (spec.md §4.9's
// UelRegistering state).
func (h *Handle) UELRegisterRawStart() error {
	return h.uelRegStart(uelModeRaw, "UELRegisterRawStart")
}

// UELRegisterMapStart begins a user-map UEL registration batch.
func (h *Handle) UELRegisterMapStart() error {
	return h.uelRegStart(uelModeMap, "UELRegisterMapStart")
}

// UELRegisterStrStart begins a string-mode UEL registration batch, where
// RegisterStr is idempotent for names already known.
func (h *Handle) UELRegisterStrStart() error {
	return h.uelRegStart(uelModeStr, "UELRegisterStrStart")
}

func (h *Handle) uelRegStart(mode uelMode, context string) error {
	if h.st != stateOpen {
		return h.wrongMode(context + " called outside the Open state")
	}

	h.st = stateUelReg
	h.uelRegMode = mode

	return nil
}

// UELRegisterRaw registers name under the next raw number. Valid only
// after UELRegisterRawStart.
func (h *Handle) UELRegisterRaw(name string) (raw int32, err error) {
	if h.st != stateUelReg || h.uelRegMode != uelModeRaw {
		return 0, h.wrongMode("UELRegisterRaw called outside a raw registration batch")
	}

	raw, err = h.uels.RegisterRaw(name)
	if err != nil {
		return 0, h.fail(err)
	}

	return raw, nil
}

// UELRegisterMap registers name under the explicit user-map value umap.
// Valid only after UELRegisterMapStart.
func (h *Handle) UELRegisterMap(umap int32, name string) error {
	if h.st != stateUelReg || h.uelRegMode != uelModeMap {
		return h.wrongMode("UELRegisterMap called outside a map registration batch")
	}

	_, err := h.uels.RegisterMap(umap, name)
	if err != nil {
		return h.fail(err)
	}

	return nil
}

// UELRegisterStr registers name if not already known, returning its raw
// number either way. Valid only after UELRegisterStrStart.
func (h *Handle) UELRegisterStr(name string) (raw int32, err error) {
	if h.st != stateUelReg || h.uelRegMode != uelModeStr {
		return 0, h.wrongMode("UELRegisterStr called outside a string registration batch")
	}

	raw, err = h.uels.RegisterStr(name)
	if err != nil {
		return 0, h.fail(err)
	}

	return raw, nil
}

// UELRegisterDone ends the current registration batch, returning to the
// Open state.
func (h *Handle) UELRegisterDone() error {
	if h.st != stateUelReg {
		return h.wrongMode("UELRegisterDone called outside a registration batch")
	}

	h.st = stateOpen
	h.uelRegMode = uelModeNone

	return nil
}

// UMUelInfo returns the name and user-map value registered under raw
// number raw.
func (h *Handle) UMUelInfo(raw int32) (name string, userMap int32, err error) {
	name, userMap, ok := h.uels.GetByRaw(raw)
	if !ok {
		return "", 0, h.fail(fmt.Errorf("%w: raw UEL %d", errs.ErrBadUEL, raw))
	}

	return name, userMap, nil
}

// UMUelGet returns the name registered under raw number raw, ignoring any
// user map (spec.md scenario 3: "UMUelGet(1) returns b").
func (h *Handle) UMUelGet(raw int32) (name string, err error) {
	name, _, err = h.UMUelInfo(raw)
	return name, err
}

// UMFindUEL resolves name to its raw number and user-map value.
func (h *Handle) UMFindUEL(name string) (raw int32, userMap int32, ok bool) {
	return h.uels.FindByName(name)
}

// GetUEL returns the name registered under raw number raw, or ok=false if
// none.
func (h *Handle) GetUEL(raw int32) (name string, ok bool) {
	name, _, ok = h.uels.GetByRaw(raw)
	return name, ok
}

// RenameUEL changes a registered UEL's name in place, preserving its raw
// number and user map (spec.md scenario 3). Valid in the Open state,
// typically right after OpenAppend.
func (h *Handle) RenameUEL(oldName, newName string) error {
	if h.st != stateOpen {
		return h.wrongMode("RenameUEL called outside the Open state")
	}

	if err := h.uels.Rename(oldName, newName); err != nil {
		return h.fail(err)
	}

	return nil
}

// UELMaxLength returns the longest registered UEL name's length.
func (h *Handle) UELMaxLength() int {
	return h.uels.MaxLength()
}
