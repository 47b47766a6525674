package gdx

import (
	"fmt"

	"github.com/gdxlib/gdx/compress"
	"github.com/gdxlib/gdx/endian"
	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/reccodec"
	"github.com/gdxlib/gdx/section"
	"github.com/gdxlib/gdx/stream"
)

// DLLVersion is the string GetDLLVersion reports, mirroring the source's
// convention of a human-readable "library vX.Y" tag rather than a real
// shared-object version.
const DLLVersion = "gdxcore Go v1"

// GetDLLVersion returns this implementation's version string (spec.md
// §6).
func (h *Handle) GetDLLVersion() string { return DLLVersion }

// GetMemoryUsed returns an approximation of the handle's resident memory:
// the UEL table's name bytes plus one entry overhead per registered UEL,
// set-text entry and symbol. It exists for API parity with the source's
// allocator-introspection call; this implementation does not track true
// heap usage (spec.md's out-of-scope "process-wide heap manager").
func (h *Handle) GetMemoryUsed() int64 {
	if h.st == stateIdle || h.st == stateClosed {
		return 0
	}

	const perEntryOverhead = 32

	total := int64(0)
	for _, name := range h.uels.All() {
		total += int64(len(name)) + perEntryOverhead
	}
	for _, e := range h.settexts.All() {
		total += int64(len(e.Text)) + perEntryOverhead
	}
	total += int64(h.symbols.Count()) * perEntryOverhead

	return total
}

// openCommon resets a freshly-created Handle's per-session state so Open
// can be called more than once per handle (spec.md: "opens zero or one
// file at a time").
func (h *Handle) openCommon() {
	h.writeSess = nil
	h.writeSymbol = 0
	h.readSess = nil
	h.readSymbol = 0
}

// OpenWrite begins a write session on filename, truncating any existing
// file. Compression defaults from the GDXCOMPRESS environment variable
// (spec.md §6).
func (h *Handle) OpenWrite(filename, producer string) error {
	return h.openWrite(filename, producer, envCompress())
}

// OpenWriteEx is OpenWrite with an explicit compression flag, overriding
// GDXCOMPRESS.
func (h *Handle) OpenWriteEx(filename, producer string, compressed bool) error {
	return h.openWrite(filename, producer, compressed)
}

func (h *Handle) openWrite(filename, producer string, compressed bool) error {
	if h.st != stateIdle && h.st != stateClosed {
		return h.wrongMode("OpenWrite called with a file already open")
	}
	if filename == "" {
		return h.fail(errs.ErrFilenameEmpty)
	}

	algo := compress.AlgorithmNone
	if compressed {
		algo = compress.AlgorithmZlib
	}

	s, err := stream.OpenWrite(filename, compressed, algo)
	if err != nil {
		return h.fail(err)
	}

	h.stream = s
	h.header = section.NewFileHeader(producer, compressed)

	if v, ok := envConvert(); ok {
		h.convertVersion = v
	}
	h.header.Version = h.convertVersion

	if err := h.header.WriteTo(h.stream); err != nil {
		h.fail(err)
		_ = h.stream.Close()

		return err
	}

	h.openCommon()
	h.st = stateOpen
	h.readMode = false

	return nil
}

// OpenRead begins a read session on filename, negotiating byte order and
// compression from the file's own header (spec.md §4.1, §4.11).
func (h *Handle) OpenRead(filename string) error {
	return h.openRead(filename)
}

// OpenReadEx is an alias for OpenRead; the source's readMode parameter
// (buffered vs. mapped-memory access) is ignored: open loads only the
// metadata sections, and each symbol's records are decoded whole when
// its DataRead*Start call runs (spec.md §9 accepts whole-symbol
// buffering over true streaming).
func (h *Handle) OpenReadEx(filename string, _ int) error {
	return h.openRead(filename)
}

func (h *Handle) openRead(filename string) error {
	if h.st != stateIdle && h.st != stateClosed {
		return h.wrongMode("OpenRead called with a file already open")
	}
	if filename == "" {
		return h.fail(errs.ErrFilenameEmpty)
	}

	s, err := stream.OpenRead(filename, compress.AlgorithmZlib)
	if err != nil {
		return h.fail(err)
	}

	h.stream = s
	h.header = &section.FileHeader{}

	if err := h.header.ReadFrom(h.stream); err != nil {
		h.fail(err)
		_ = h.stream.Close()

		return err
	}

	if err := h.loadSections(); err != nil {
		h.fail(err)
		_ = h.stream.Close()

		return err
	}

	h.openCommon()
	h.st = stateOpen
	h.readMode = true

	return nil
}

// OpenAppend reopens filename for write, preserving its existing UELs,
// set texts, acronyms and symbols so further symbols can be added
// (spec.md §6's "OpenAppend"). Every previously-written symbol's data is
// decoded and re-encoded into the new file, since a write session always
// starts from a truncated file (spec.md §4.11 gives no format for
// in-place extension of the data region); readers see identical content
// at a new offset.
func (h *Handle) OpenAppend(filename, producer string) error {
	if h.st != stateIdle && h.st != stateClosed {
		return h.wrongMode("OpenAppend called with a file already open")
	}

	if err := h.openRead(filename); err != nil {
		return err
	}

	type savedData struct {
		symbolNumber int
		records      []reccodec.Record
	}

	var saved []savedData

	for _, sym := range h.symbols.All() {
		// An alias has no data section of its own (AddAlias records
		// position 0), so there is nothing to decode for it.
		if !h.symbols.Written(sym.Number) || sym.Type == format.Alias {
			continue
		}

		if err := h.stream.Seek(sym.Position); err != nil {
			_ = h.stream.Close()
			return h.fail(err)
		}

		records, err := reccodec.Decode(h.stream, section.MarkerData, sym.Type, h.specials, nil)
		if err != nil {
			_ = h.stream.Close()
			return h.fail(err)
		}

		saved = append(saved, savedData{symbolNumber: sym.Number, records: records})
	}

	if err := h.stream.Close(); err != nil {
		return h.fail(err)
	}

	compressed := h.header.Compressed
	algo := compress.AlgorithmNone
	if compressed {
		algo = compress.AlgorithmZlib
	}

	s, err := stream.OpenWrite(filename, compressed, algo)
	if err != nil {
		return h.fail(err)
	}

	h.stream = s
	h.header.AuditLine = fmt.Sprintf("GDXCORE:%d", section.VersionCurrent)
	h.header.ProducerName = producer

	if err := h.header.WriteTo(h.stream); err != nil {
		h.fail(err)
		_ = h.stream.Close()

		return err
	}

	for _, sd := range saved {
		sym, ok := h.symbols.Get(sd.symbolNumber)
		if !ok {
			continue
		}

		pos, err := h.stream.Align()
		if err != nil {
			return h.fail(err)
		}

		if err := reccodec.Encode(h.stream, section.MarkerData, sym.Dim, sym.Type, sd.records, h.specials); err != nil {
			return h.fail(err)
		}

		if err := h.symbols.MarkWritten(sym.Number, sym.RecordCount, sym.ErrorCount, sym.HasSetText, pos); err != nil {
			return h.fail(err)
		}
	}

	h.readMode = false

	return nil
}

// Close finishes the current session: a write session flushes the UEL,
// set-text, acronym, domain and symbol sections and rewrites the
// header's section index (spec.md §4.11); a read session simply closes
// the file.
func (h *Handle) Close() error {
	if h.st != stateOpen {
		return h.wrongMode("Close called outside the Open state")
	}
	if h.stream == nil {
		return h.fail(errs.ErrFileNotOpen)
	}

	if !h.readMode {
		if err := h.closeWrite(); err != nil {
			return err
		}
	}

	err := h.stream.Close()
	h.stream = nil
	h.st = stateClosed

	if err != nil {
		return h.fail(err)
	}

	return nil
}

func (h *Handle) closeWrite() error {
	uelPos, err := h.writeUELSection()
	if err != nil {
		return h.fail(err)
	}

	setTextPos, err := h.writeSetTextSection()
	if err != nil {
		return h.fail(err)
	}

	acronymPos, err := h.writeAcronymSection()
	if err != nil {
		return h.fail(err)
	}

	domainsPos, err := h.writeDomainsSection()
	if err != nil {
		return h.fail(err)
	}

	symbolPos, err := h.writeSymbolsSection()
	if err != nil {
		return h.fail(err)
	}

	nextWrite, err := h.stream.Align()
	if err != nil {
		return h.fail(err)
	}

	h.header.Offsets[section.OffsetSymbol] = symbolPos
	h.header.Offsets[section.OffsetUEL] = uelPos
	h.header.Offsets[section.OffsetSetText] = setTextPos
	h.header.Offsets[section.OffsetAcronym] = acronymPos
	h.header.Offsets[section.OffsetNextWrite] = nextWrite
	h.header.Offsets[section.OffsetRelaxedDomain] = domainsPos

	buf := &headerBuffer{engine: h.stream.Engine()}
	if err := h.header.WriteTo(buf); err != nil {
		return h.fail(err)
	}

	return h.fail(h.stream.RewriteAt(0, buf.bytes))
}

// headerBuffer is an in-memory section.Writer used to re-render the
// fixed-size header prologue for the close-time RewriteAt fixup, using
// the same byte order the rest of the file was written with.
type headerBuffer struct {
	bytes  []byte
	engine endian.EndianEngine
}

func (b *headerBuffer) WriteByte(v byte) error {
	b.bytes = append(b.bytes, v)
	return nil
}

func (b *headerBuffer) WriteShortString(s string) error {
	if len(s) > 255 {
		return fmt.Errorf("gdx: short string length %d exceeds 255", len(s))
	}

	b.bytes = append(b.bytes, byte(len(s)))
	b.bytes = append(b.bytes, s...)

	return nil
}

func (b *headerBuffer) WriteInt32(v int32) error {
	var tmp [4]byte
	b.engine.PutUint32(tmp[:], uint32(v)) //nolint:gosec
	b.bytes = append(b.bytes, tmp[:]...)

	return nil
}

func (b *headerBuffer) WriteInt64(v int64) error {
	var tmp [8]byte
	b.engine.PutUint64(tmp[:], uint64(v)) //nolint:gosec
	b.bytes = append(b.bytes, tmp[:]...)

	return nil
}

// FileInfo returns the on-disk format version and compression flag of
// the currently open file (spec.md §6).
func (h *Handle) FileInfo() (version int, compressed bool, err error) {
	if h.header == nil {
		return 0, false, h.wrongMode("FileInfo called with no file open")
	}

	return int(h.header.Version), h.header.Compressed, nil
}

// FileVersion returns the header's audit/version line and producer name
// (spec.md §6).
func (h *Handle) FileVersion() (auditLine, producer string, err error) {
	if h.header == nil {
		return "", "", h.wrongMode("FileVersion called with no file open")
	}

	return h.header.AuditLine, h.header.ProducerName, nil
}

// SystemInfo returns the number of registered symbols and UELs (spec.md
// §6).
func (h *Handle) SystemInfo() (symbolCount, uelCount int) {
	return h.symbols.Count(), h.uels.Count()
}
