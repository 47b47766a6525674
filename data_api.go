package gdx

import (
	"fmt"
	"math"

	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/reccodec"
	"github.com/gdxlib/gdx/section"
	"github.com/gdxlib/gdx/session"
	"github.com/gdxlib/gdx/specval"
)

// applyAcronymPolicy collapses any acronym-tagged value to a plain NaN
// when MapAcronymsToNaNSet(true) is in effect, in place: values is the
// read session's own stored record slice, which it does not hand out
// again.
func (h *Handle) applyAcronymPolicy(values []float64) []float64 {
	if !h.mapAcronymsToNaN {
		return values
	}

	for i, v := range values {
		if specval.IsAcronym(v) {
			values[i] = math.NaN()
		}
	}

	return values
}

func (h *Handle) dataWriteStart(mode session.Mode, name, explTxt string, dim int, typ format.SymbolType, userInfo int) error {
	if h.st != stateOpen {
		return h.wrongMode("DataWrite*Start called outside the Open state")
	}

	number, err := h.symbols.Add(name, dim, typ, userInfo, explTxt)
	if err != nil {
		return h.fail(err)
	}

	sym, _ := h.symbols.Get(number)

	h.writeSess = session.NewWriteSession(mode, number, dim, typ, sym.Domain, h.uels, h.checker, h.specials)
	h.writeSymbol = number
	h.st = stateWriting

	return nil
}

// DataWriteRawStart registers a new symbol and begins a raw-mode write
// session (spec.md §4.9). Keys passed to subsequent DataWriteRaw calls
// must be raw UEL numbers in strictly increasing lexicographic order.
func (h *Handle) DataWriteRawStart(name, explTxt string, dim int, typ format.SymbolType, userInfo int) error {
	return h.dataWriteStart(session.ModeRaw, name, explTxt, dim, typ, userInfo)
}

// DataWriteMapStart registers a new symbol and begins a mapped-mode
// write session: keys are user-map indices and may arrive out of order.
func (h *Handle) DataWriteMapStart(name, explTxt string, dim int, typ format.SymbolType, userInfo int) error {
	return h.dataWriteStart(session.ModeMapped, name, explTxt, dim, typ, userInfo)
}

// DataWriteStrStart registers a new symbol and begins a string-mode
// write session: keys are UEL name strings, auto-registered on first
// use.
func (h *Handle) DataWriteStrStart(name, explTxt string, dim int, typ format.SymbolType, userInfo int) error {
	return h.dataWriteStart(session.ModeString, name, explTxt, dim, typ, userInfo)
}

func (h *Handle) checkWriting(context string) error {
	if h.st != stateWriting || h.writeSess == nil {
		return h.wrongMode(context + " called outside a DataWrite*Start/.../Done block")
	}

	return nil
}

// DataWriteRaw appends one record to the symbol begun by
// DataWriteRawStart.
func (h *Handle) DataWriteRaw(key []uint32, values []float64) error {
	if err := h.checkWriting("DataWriteRaw"); err != nil {
		return err
	}

	return h.fail(h.writeSess.WriteRaw(key, values))
}

// DataWriteMap appends one record to the symbol begun by
// DataWriteMapStart.
func (h *Handle) DataWriteMap(userKey []int32, values []float64) error {
	if err := h.checkWriting("DataWriteMap"); err != nil {
		return err
	}

	return h.fail(h.writeSess.WriteMapped(userKey, values))
}

// DataWriteStr appends one record to the symbol begun by
// DataWriteStrStart, auto-registering any UEL name not yet known.
func (h *Handle) DataWriteStr(strKey []string, values []float64) error {
	if err := h.checkWriting("DataWriteStr"); err != nil {
		return err
	}

	return h.fail(h.writeSess.WriteString(strKey, values))
}

// DataWriteDone sorts (if needed), encodes and persists the session's
// records, fixes the symbol's metadata in the catalog, and returns to
// the Open state (spec.md §4.9).
func (h *Handle) DataWriteDone() error {
	if err := h.checkWriting("DataWriteDone"); err != nil {
		return err
	}

	pos, err := h.stream.Align()
	if err != nil {
		return h.fail(err)
	}

	recordCount, errorCount, err := h.writeSess.Done(h.stream, section.MarkerData)
	if err != nil {
		return h.fail(err)
	}

	if err := h.symbols.MarkWritten(h.writeSymbol, recordCount, errorCount, h.writeSess.HasSetText(), pos); err != nil {
		return h.fail(err)
	}

	h.lastErrorRecords = h.writeSess.ErrorRecords()
	if errorCount > 0 {
		h.fail(errs.ErrDomainViolation) //nolint:errcheck
	}

	h.writeSess = nil
	h.writeSymbol = 0
	h.st = stateOpen

	return nil
}

// universeRecords synthesizes the universe set's record run: every
// registered UEL, in raw-number order, with set-text index 0 (spec.md
// §3: "Symbol 0 is the synthetic universe set (all UELs), read-only").
func (h *Handle) universeRecords() []reccodec.Record {
	n := h.uels.Count()
	records := make([]reccodec.Record, n)
	for i := 0; i < n; i++ {
		records[i] = reccodec.Record{Key: []uint32{uint32(i + 1)}, Values: []float64{0}} //nolint:gosec
	}

	return records
}

// resolveReadTarget returns the symbol whose data section should
// actually be read for number: an alias redirects to the symbol it
// aliases (spec.md §3), since alias entries carry no data of their own.
func (h *Handle) resolveReadTarget(number int) (dim int, typ format.SymbolType, position int64, err error) {
	sym, ok := h.symbols.Get(number)
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number)
	}

	if sym.Type == format.Alias {
		target, ok := h.symbols.Get(sym.UserInfo)
		if !ok {
			return 0, 0, 0, fmt.Errorf("%w: alias target %d", errs.ErrBadSymbolNumber, sym.UserInfo)
		}

		return target.Dim, target.Type, target.Position, nil
	}

	return sym.Dim, sym.Type, sym.Position, nil
}

func (h *Handle) dataReadStart(mode session.Mode, number int, actions []session.DimAction) (int, error) {
	if h.st != stateOpen {
		return 0, h.wrongMode("DataRead*Start called outside the Open state")
	}

	if number == 0 {
		records := h.universeRecords()
		h.readSess = session.NewReadSessionFromRecords(mode, 1, h.uels, records)
		h.readSymbol = 0
		h.st = stateReading

		return len(records), nil
	}

	dim, typ, position, err := h.resolveReadTarget(number)
	if err != nil {
		return 0, h.fail(err)
	}

	if err := h.stream.Seek(position); err != nil {
		return 0, h.fail(err)
	}

	sv := h.specials
	if h.readSpecials != nil {
		sv = *h.readSpecials
	}

	rs, err := session.NewReadSession(h.stream, section.MarkerData, dim, typ, sv, mode, h.uels, actions, h.filters)
	if err != nil {
		return 0, h.fail(err)
	}

	h.readSess = rs
	h.readSymbol = number
	h.st = stateReading

	return rs.Count(), nil
}

// DataReadRawStart begins reading symbol number's records in raw mode,
// returning the number of records available.
func (h *Handle) DataReadRawStart(number int) (int, error) {
	return h.dataReadStart(session.ModeRaw, number, nil)
}

// DataReadMapStart begins reading symbol number's records in mapped
// mode.
func (h *Handle) DataReadMapStart(number int) (int, error) {
	return h.dataReadStart(session.ModeMapped, number, nil)
}

// DataReadStrStart begins reading symbol number's records in string
// mode.
func (h *Handle) DataReadStrStart(number int) (int, error) {
	return h.dataReadStart(session.ModeString, number, nil)
}

// DataReadSliceStart is an alias for DataReadStrStart: GDX's "slice"
// read is conventionally used for small symbols read in one pass with
// UEL strings already resolved (spec.md §6).
func (h *Handle) DataReadSliceStart(number int) (int, error) {
	return h.DataReadStrStart(number)
}

func (h *Handle) checkReading(context string) error {
	if h.st != stateReading || h.readSess == nil {
		return h.wrongMode(context + " called outside a DataRead*Start/.../Done block")
	}

	return nil
}

// DataReadRaw returns the next record as raw UEL numbers.
func (h *Handle) DataReadRaw() (key []uint32, values []float64, ok bool) {
	if h.checkReading("DataReadRaw") != nil {
		return nil, nil, false
	}

	key, values, ok = h.readSess.ReadNextRaw()
	return key, h.applyAcronymPolicy(values), ok
}

// DataReadMap returns the next record as user-map indices.
func (h *Handle) DataReadMap() (key []int32, values []float64, ok bool) {
	if h.checkReading("DataReadMap") != nil {
		return nil, nil, false
	}

	key, values, ok = h.readSess.ReadNextMapped()
	return key, h.applyAcronymPolicy(values), ok
}

// DataReadStr returns the next record as UEL name strings.
func (h *Handle) DataReadStr() (key []string, values []float64, ok bool) {
	if h.checkReading("DataReadStr") != nil {
		return nil, nil, false
	}

	key, values, ok = h.readSess.ReadNextString()
	return key, h.applyAcronymPolicy(values), ok
}

// DataReadSlice is an alias for DataReadStr.
func (h *Handle) DataReadSlice() (key []string, values []float64, ok bool) {
	return h.DataReadStr()
}

// DataReadDone ends the current read session, returning to the Open
// state.
func (h *Handle) DataReadDone() error {
	if err := h.checkReading("DataReadDone"); err != nil {
		return err
	}

	h.readSess = nil
	h.readSymbol = 0
	h.st = stateOpen

	return nil
}

// DataReadRawFast reads every record of symbol number in raw mode
// without the caller driving a Start/Read/Done loop, invoking fn once
// per record; fn returning false stops iteration early (spec.md §6's
// "DataReadRawFast" family).
func (h *Handle) DataReadRawFast(number int, fn func(key []uint32, values []float64) bool) error {
	if _, err := h.DataReadRawStart(number); err != nil {
		return err
	}

	for {
		key, values, ok := h.DataReadRaw()
		if !ok {
			break
		}
		if !fn(key, values) {
			break
		}
	}

	return h.DataReadDone()
}

// DataReadRawFastFilt is DataReadRawFast with a per-dimension filtered
// read: actions[i] is filter.DomcUnmapped, filter.DomcExpand, or a
// registered filter number (spec.md §4.8).
func (h *Handle) DataReadRawFastFilt(number int, actions []int, fn func(key []uint32, values []float64) bool) error {
	dimActions := make([]session.DimAction, len(actions))
	for i, a := range actions {
		dimActions[i] = session.DimAction(a)
	}

	if _, err := h.dataReadStart(session.ModeRaw, number, dimActions); err != nil {
		return err
	}

	for {
		key, values, ok := h.DataReadRaw()
		if !ok {
			break
		}
		if !fn(key, values) {
			break
		}
	}

	return h.DataReadDone()
}

// DataReadRawFastEx is DataReadRawFast plus the symbol's stored record
// and domain-error counts, avoiding a second SymbolInfoX round trip.
func (h *Handle) DataReadRawFastEx(number int, fn func(key []uint32, values []float64) bool) (recordCount, errorCount int, err error) {
	sym, ok := h.symbols.Get(number)
	if !ok {
		return 0, 0, h.fail(fmt.Errorf("%w: %d", errs.ErrBadSymbolNumber, number))
	}

	if err := h.DataReadRawFast(number, fn); err != nil {
		return 0, 0, err
	}

	return sym.RecordCount, sym.ErrorCount, nil
}

// DataSliceUELS resolves each raw UEL number in key to its registered
// name, for presenting a decoded raw-mode key to a caller.
func (h *Handle) DataSliceUELS(key []uint32) ([]string, error) {
	names := make([]string, len(key))
	for i, raw := range key {
		name, _, ok := h.uels.GetByRaw(int32(raw)) //nolint:gosec
		if !ok {
			return nil, h.fail(fmt.Errorf("%w: raw UEL %d", errs.ErrBadUEL, raw))
		}
		names[i] = name
	}

	return names, nil
}

// DataErrorCount returns the number of domain-violating records recorded
// by the write session most recently finished with DataWriteDone
// (spec.md §4.7, §8's "error capture cap" property).
func (h *Handle) DataErrorCount() int {
	if h.writeSess != nil {
		return h.writeSess.ErrorCount()
	}

	return len(h.lastErrorRecords)
}

// DataErrorRecord returns the 1-based idx'th retained domain-violating
// record (capped at session.MaxRetainedErrors) as raw UEL numbers.
func (h *Handle) DataErrorRecord(idx int) (key []uint32, values []float64, err error) {
	if idx < 1 || idx > len(h.lastErrorRecords) {
		return nil, nil, h.fail(fmt.Errorf("gdx: error record index %d out of range", idx))
	}

	rec := h.lastErrorRecords[idx-1]

	return rec.Key, rec.Values, nil
}

// DataErrorRecordX is DataErrorRecord with the key resolved to UEL name
// strings.
func (h *Handle) DataErrorRecordX(idx int) (key []string, values []float64, err error) {
	raw, values, err := h.DataErrorRecord(idx)
	if err != nil {
		return nil, nil, err
	}

	names, err := h.DataSliceUELS(raw)
	if err != nil {
		return nil, nil, err
	}

	return names, values, nil
}
