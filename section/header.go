package section

import (
	"fmt"

	"github.com/gdxlib/gdx/errs"
)

// SectionOffset indices into FileHeader.Offsets, in on-disk order
// (spec.md §4.11).
const (
	OffsetSymbol = iota
	OffsetUEL
	OffsetSetText
	OffsetAcronym
	OffsetNextWrite
	OffsetRelaxedDomain
	OffsetCount
)

// Writer is the subset of ByteStream's typed write API the header needs.
// Kept as a narrow interface here (rather than importing package stream)
// so section stays a leaf package with no dependency on the frame/
// compression machinery that only matters once we're past the header.
type Writer interface {
	WriteByte(b byte) error
	WriteShortString(s string) error
	WriteInt32(v int32) error
	WriteInt64(v int64) error
}

// Reader is the read-side counterpart of Writer.
type Reader interface {
	ReadByte() (byte, error)
	ReadShortString() (string, error)
	ReadInt32() (int32, error)
	ReadInt64() (int64, error)
}

// FileHeader is the fixed-shape prologue of every GDX file: magic byte,
// format name, version, compression flag, audit/producer strings, the
// BOI sentinel, and the six section offsets (spec.md §4.11).
type FileHeader struct {
	Version      Version
	Compressed   bool
	AuditLine    string
	ProducerName string
	Offsets      [OffsetCount]int64
}

// NewFileHeader returns a header with all offsets marked absent, ready
// to be filled in as sections are written.
func NewFileHeader(producer string, compressed bool) *FileHeader {
	h := &FileHeader{
		Version:      VersionCurrent,
		Compressed:   compressed,
		AuditLine:    fmt.Sprintf("GDXCORE:%d", VersionCurrent),
		ProducerName: producer,
	}
	for i := range h.Offsets {
		h.Offsets[i] = AbsentOffset
	}

	return h
}

// WriteTo serializes the header's fixed prologue, including the six
// section offsets as they currently stand (AbsentOffset until set). At
// Close the gdx facade sets the final offsets and calls WriteTo again to
// render the bytes it passes to stream.RewriteAt.
func (h *FileHeader) WriteTo(w Writer) error {
	if err := w.WriteByte(HeaderMagic); err != nil {
		return err
	}
	if err := w.WriteShortString(FormatName); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(h.Version)); err != nil {
		return err
	}

	compr := int32(0)
	if h.Compressed {
		compr = 1
	}
	if err := w.WriteInt32(compr); err != nil {
		return err
	}

	if err := w.WriteShortString(h.AuditLine); err != nil {
		return err
	}
	if err := w.WriteShortString(h.ProducerName); err != nil {
		return err
	}
	if err := w.WriteInt32(BOISentinel); err != nil {
		return err
	}

	for _, off := range h.Offsets {
		if err := w.WriteInt64(off); err != nil {
			return err
		}
	}

	return nil
}

// ReadFrom parses a header previously written by WriteTo, validating the
// magic byte, format name and BOI sentinel.
func (h *FileHeader) ReadFrom(r Reader) error {
	magic, err := r.ReadByte()
	if err != nil {
		return err
	}
	if magic != HeaderMagic {
		return errs.ErrBadMagic
	}

	name, err := r.ReadShortString()
	if err != nil {
		return err
	}
	if name != FormatName {
		return errs.ErrBadMagic
	}

	ver, err := r.ReadInt32()
	if err != nil {
		return err
	}
	h.Version = Version(ver)
	if h.Version > VersionCurrent {
		return errs.ErrVersionTooNew
	}

	compr, err := r.ReadInt32()
	if err != nil {
		return err
	}
	h.Compressed = compr != 0

	if h.AuditLine, err = r.ReadShortString(); err != nil {
		return err
	}
	if h.ProducerName, err = r.ReadShortString(); err != nil {
		return err
	}

	boi, err := r.ReadInt32()
	if err != nil {
		return err
	}
	if boi != BOISentinel {
		return errs.ErrCorrupt
	}

	for i := range h.Offsets {
		if h.Offsets[i], err = r.ReadInt64(); err != nil {
			return err
		}
	}

	return nil
}

// HeaderSizeBytes returns the exact number of bytes WriteTo emits for the
// given header.
func HeaderSizeBytes(h *FileHeader) int {
	// magic(1) + shortstring(FormatName) + version(4) + compressed(4) +
	// shortstring(audit) + shortstring(producer) + boi(4) + 6*int64(8)
	size := 1
	size += 1 + len(FormatName)
	size += 4 + 4
	size += 1 + len(h.AuditLine)
	size += 1 + len(h.ProducerName)
	size += 4
	size += OffsetCount * 8

	return size
}
