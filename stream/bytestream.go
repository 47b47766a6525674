// Package stream implements ByteStream, the frame-buffered, endian-aware,
// optionally-compressed byte-level transport every other GDX package reads
// and writes through (spec.md §4.1).
//
// A ByteStream frames its payload into fixed FrameSize chunks; each frame
// is independently compressed (or stored raw, whichever is smaller) and
// prefixed with a flag byte and a big-endian length. This lets a reader
// seek to any frame boundary without having to first decode everything
// before it, which is what gives symbol-local reads their effectively
// constant cost: the gdx facade's DataWriteDone calls Align before each
// symbol's data block and records the resulting file offset as that
// symbol's Position.
package stream

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gdxlib/gdx/compress"
	"github.com/gdxlib/gdx/endian"
	"github.com/gdxlib/gdx/errs"
	"github.com/gdxlib/gdx/internal/pool"
)

// maxShortString is the largest string a WriteShortString call accepts,
// matching the uint8 length prefix (spec.md's "short string" convention,
// grounded on the teacher's VarStringEncoder).
const maxShortString = 255

// ByteStream is the frame-buffered reader/writer every GDX section is
// built on top of. A single ByteStream is either in write mode (produced
// by OpenWrite) or read mode (produced by OpenRead); the two halves share
// the same frame format but not a Go type method set beyond what's common.
type ByteStream struct {
	f      *os.File
	engine endian.EndianEngine
	codec  compress.Codec
	compressed bool

	// write side
	wbuf *pool.ByteBuffer

	// read side
	rbuf   []byte // decoded bytes not yet consumed
	rpos   int
	atEOF  bool
}

// OpenWrite creates f (truncating if it exists) and opens it for writing.
// The stream writes in this host's native byte order, which is recorded in
// the file's signature so a later OpenRead on any platform can recover it.
func OpenWrite(name string, compressed bool, algo compress.Algorithm) (*ByteStream, error) {
	if name == "" {
		return nil, errs.ErrFilenameEmpty
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("stream: create %s: %w", name, err)
	}

	codec, err := compress.NewCodec(algo)
	if err != nil {
		f.Close()
		return nil, err
	}

	nativeEngine := endian.GetLittleEndianEngine()
	if endian.IsNativeBigEndian() {
		nativeEngine = endian.GetBigEndianEngine()
	}

	s := &ByteStream{
		f:          f,
		engine:     nativeEngine,
		codec:      codec,
		compressed: compressed,
		wbuf:       pool.GetFrameBuffer(),
	}

	sig := endian.WriteSignature(nil, nativeEngine)
	if _, err := f.Write(sig); err != nil {
		f.Close()
		return nil, fmt.Errorf("stream: write signature: %w", err)
	}

	return s, nil
}

// OpenRead opens name for reading and negotiates its byte order from the
// leading signature (spec.md §4.1).
func OpenRead(name string, algo compress.Algorithm) (*ByteStream, error) {
	if name == "" {
		return nil, errs.ErrFilenameEmpty
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("stream: open %s: %w", name, err)
	}

	sig := make([]byte, endian.SignatureSize)
	if _, err := io.ReadFull(f, sig); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading signature: %v", errs.ErrCorrupt, err)
	}

	engine, ok := endian.ReadSignature(sig)
	if !ok {
		f.Close()
		return nil, errs.ErrIncompatibleEncoding
	}

	codec, err := compress.NewCodec(algo)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &ByteStream{
		f:      f,
		engine: engine,
		codec:  codec,
	}, nil
}

// Close flushes any pending frame and closes the underlying file.
func (s *ByteStream) Close() error {
	if s.wbuf != nil {
		if err := s.flush(); err != nil {
			s.f.Close()
			return err
		}
		pool.PutFrameBuffer(s.wbuf)
		s.wbuf = nil
	}

	return s.f.Close()
}

// Engine returns the byte order negotiated (write) or discovered (read)
// for this stream.
func (s *ByteStream) Engine() endian.EndianEngine { return s.engine }

// flush writes the current accumulated frame, if non-empty, and resets it.
func (s *ByteStream) flush() error {
	if s.wbuf.Len() == 0 {
		return nil
	}

	if _, err := writeFrame(s.f, s.wbuf.Bytes(), s.codec, s.compressed); err != nil {
		return err
	}

	s.wbuf.Reset()

	return nil
}

// Align flushes the current partial frame (if any) so the next byte
// written begins a fresh frame, and returns the file offset of that
// frame's start. The gdx facade's DataWriteDone calls this immediately
// before each symbol's data block so the symbol's recorded Position is
// always a valid read-mode seek target.
func (s *ByteStream) Align() (int64, error) {
	if err := s.flush(); err != nil {
		return 0, err
	}

	return s.f.Seek(0, io.SeekCurrent)
}

// RewriteAt overwrites length-of-data bytes at a fixed file offset without
// disturbing the stream's current write position, used only for the
// close-time section-index fixup (spec.md §4.11: "section offsets ...
// rewritten at Close"). Any pending frame is flushed first so the
// rewrite never lands inside a not-yet-written region.
func (s *ByteStream) RewriteAt(offset int64, data []byte) error {
	if err := s.flush(); err != nil {
		return err
	}

	if _, err := s.f.WriteAt(data, offset); err != nil {
		return fmt.Errorf("stream: rewrite at %d: %w", offset, err)
	}

	return nil
}

// Seek repositions the stream for reading at a raw file offset previously
// returned by Align. It discards any buffered, not-yet-consumed
// frame content (spec.md: "seeking ... invalidates the in-buffer read
// window").
func (s *ByteStream) Seek(offset int64) error {
	if _, err := s.f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("stream: seek: %w", err)
	}

	s.rbuf = nil
	s.rpos = 0
	s.atEOF = false

	return nil
}

func (s *ByteStream) appendBytes(data []byte) error {
	for len(data) > 0 {
		room := FrameSize - s.wbuf.Len()
		n := room
		if n > len(data) {
			n = len(data)
		}

		s.wbuf.MustWrite(data[:n])
		data = data[n:]

		if s.wbuf.Len() == FrameSize {
			if err := s.flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *ByteStream) ensureReadable(n int) error {
	for len(s.rbuf)-s.rpos < n {
		if s.atEOF {
			return io.ErrUnexpectedEOF
		}

		payload, err := readFrame(s.f, s.codec)
		if err != nil {
			if err == io.EOF { //nolint:errorlint
				s.atEOF = true
				return io.ErrUnexpectedEOF
			}

			return err
		}

		if s.rpos > 0 {
			s.rbuf = append(s.rbuf[:0], s.rbuf[s.rpos:]...)
			s.rpos = 0
		}

		s.rbuf = append(s.rbuf, payload...)
	}

	return nil
}

func (s *ByteStream) readN(n int) ([]byte, error) {
	if err := s.ensureReadable(n); err != nil {
		return nil, err
	}

	out := s.rbuf[s.rpos : s.rpos+n]
	s.rpos += n

	return out, nil
}

// --- typed write API (section.Writer and beyond) ---

// WriteByte writes a single raw byte.
func (s *ByteStream) WriteByte(b byte) error {
	return s.appendBytes([]byte{b})
}

// WriteUint8 writes an unsigned byte.
func (s *ByteStream) WriteUint8(v uint8) error {
	return s.appendBytes([]byte{v})
}

// WriteUint16 writes v in the stream's negotiated byte order.
func (s *ByteStream) WriteUint16(v uint16) error {
	var b [2]byte
	s.engine.PutUint16(b[:], v)

	return s.appendBytes(b[:])
}

// WriteUint32 writes v in the stream's negotiated byte order.
func (s *ByteStream) WriteUint32(v uint32) error {
	var b [4]byte
	s.engine.PutUint32(b[:], v)

	return s.appendBytes(b[:])
}

// WriteInt32 writes v in the stream's negotiated byte order.
func (s *ByteStream) WriteInt32(v int32) error {
	return s.WriteUint32(uint32(v)) //nolint:gosec
}

// WriteInt64 writes v in the stream's negotiated byte order.
func (s *ByteStream) WriteInt64(v int64) error {
	var b [8]byte
	s.engine.PutUint64(b[:], uint64(v)) //nolint:gosec

	return s.appendBytes(b[:])
}

// WriteFloat64 writes v in the stream's negotiated byte order.
func (s *ByteStream) WriteFloat64(v float64) error {
	var b [8]byte
	s.engine.PutUint64(b[:], math.Float64bits(v))

	return s.appendBytes(b[:])
}

// WriteShortString writes s as a uint8 length prefix followed by its
// bytes. s must be at most 255 bytes (spec.md's short-string convention,
// grounded on the teacher's VarStringEncoder).
func (s *ByteStream) WriteShortString(str string) error {
	if len(str) > maxShortString {
		return fmt.Errorf("stream: short string length %d exceeds %d", len(str), maxShortString)
	}

	if err := s.WriteUint8(uint8(len(str))); err != nil { //nolint:gosec
		return err
	}

	return s.appendBytes([]byte(str))
}

// --- typed read API (section.Reader and beyond) ---

// ReadByte reads a single raw byte.
func (s *ByteStream) ReadByte() (byte, error) {
	b, err := s.readN(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadUint8 reads an unsigned byte.
func (s *ByteStream) ReadUint8() (uint8, error) {
	return s.ReadByte()
}

// ReadUint16 reads a uint16 in the stream's negotiated byte order.
func (s *ByteStream) ReadUint16() (uint16, error) {
	b, err := s.readN(2)
	if err != nil {
		return 0, err
	}

	return s.engine.Uint16(b), nil
}

// ReadUint32 reads a uint32 in the stream's negotiated byte order.
func (s *ByteStream) ReadUint32() (uint32, error) {
	b, err := s.readN(4)
	if err != nil {
		return 0, err
	}

	return s.engine.Uint32(b), nil
}

// ReadInt32 reads an int32 in the stream's negotiated byte order.
func (s *ByteStream) ReadInt32() (int32, error) {
	v, err := s.ReadUint32()
	return int32(v), err //nolint:gosec
}

// ReadInt64 reads an int64 in the stream's negotiated byte order.
func (s *ByteStream) ReadInt64() (int64, error) {
	b, err := s.readN(8)
	if err != nil {
		return 0, err
	}

	return int64(s.engine.Uint64(b)), nil //nolint:gosec
}

// ReadFloat64 reads a float64 in the stream's negotiated byte order.
func (s *ByteStream) ReadFloat64() (float64, error) {
	b, err := s.readN(8)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(s.engine.Uint64(b)), nil
}

// ReadShortString reads a uint8-length-prefixed string.
func (s *ByteStream) ReadShortString() (string, error) {
	n, err := s.ReadUint8()
	if err != nil {
		return "", err
	}

	b, err := s.readN(int(n))
	if err != nil {
		return "", err
	}

	return string(b), nil
}
