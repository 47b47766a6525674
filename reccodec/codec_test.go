package reccodec

import (
	"bytes"
	"math"
	"testing"

	"github.com/gdxlib/gdx/endian"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/specval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStream is a tiny in-memory Writer+Reader used to exercise the
// codec without pulling in package stream, so these tests need no
// temporary files and no frame layer.
type memStream struct {
	buf    bytes.Buffer
	engine endian.EndianEngine
}

func newMemStream() *memStream { return &memStream{engine: endian.GetLittleEndianEngine()} }

func (m *memStream) WriteByte(b byte) error  { return m.buf.WriteByte(b) }
func (m *memStream) WriteUint8(v uint8) error { return m.buf.WriteByte(v) }
func (m *memStream) WriteUint16(v uint16) error {
	var b [2]byte
	m.engine.PutUint16(b[:], v)
	_, err := m.buf.Write(b[:])
	return err
}
func (m *memStream) WriteInt32(v int32) error {
	var b [4]byte
	m.engine.PutUint32(b[:], uint32(v)) //nolint:gosec
	_, err := m.buf.Write(b[:])
	return err
}
func (m *memStream) WriteFloat64(v float64) error {
	var b [8]byte
	m.engine.PutUint64(b[:], math.Float64bits(v))
	_, err := m.buf.Write(b[:])
	return err
}
func (m *memStream) WriteShortString(s string) error {
	if err := m.buf.WriteByte(byte(len(s))); err != nil { //nolint:gosec
		return err
	}
	_, err := m.buf.WriteString(s)
	return err
}

func (m *memStream) ReadByte() (byte, error) { return m.buf.ReadByte() }
func (m *memStream) ReadUint8() (uint8, error) {
	b, err := m.buf.ReadByte()
	return b, err
}
func (m *memStream) ReadUint16() (uint16, error) {
	b := make([]byte, 2)
	if _, err := m.buf.Read(b); err != nil {
		return 0, err
	}
	return m.engine.Uint16(b), nil
}
func (m *memStream) ReadInt32() (int32, error) {
	b := make([]byte, 4)
	if _, err := m.buf.Read(b); err != nil {
		return 0, err
	}
	return int32(m.engine.Uint32(b)), nil //nolint:gosec
}
func (m *memStream) ReadFloat64() (float64, error) {
	b := make([]byte, 8)
	if _, err := m.buf.Read(b); err != nil {
		return 0, err
	}
	return math.Float64frombits(m.engine.Uint64(b)), nil
}
func (m *memStream) ReadShortString() (string, error) {
	n, err := m.buf.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := m.buf.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sv := specval.Default()
	records := []Record{
		{Key: []uint32{1}, Values: []float64{324}},
		{Key: []uint32{2}, Values: []float64{299}},
		{Key: []uint32{3}, Values: []float64{274}},
	}

	m := newMemStream()
	require.NoError(t, Encode(m, "_DATA_", 1, format.Parameter, records, sv))

	got, err := Decode(m, "_DATA_", format.Parameter, sv, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, r := range records {
		assert.Equal(t, r.Key, got[i].Key)
		assert.Equal(t, r.Values, got[i].Values)
	}
}

func TestEncodeOutOfOrderFails(t *testing.T) {
	sv := specval.Default()
	records := []Record{
		{Key: []uint32{3}, Values: []float64{1}},
		{Key: []uint32{1}, Values: []float64{1}},
	}

	m := newMemStream()
	err := Encode(m, "_DATA_", 1, format.Set, records, sv)
	require.Error(t, err)
}

func TestEncodeDuplicateKeyFails(t *testing.T) {
	sv := specval.Default()
	records := []Record{
		{Key: []uint32{1}, Values: []float64{1}},
		{Key: []uint32{1}, Values: []float64{2}},
	}

	m := newMemStream()
	err := Encode(m, "_DATA_", 1, format.Set, records, sv)
	require.Error(t, err)
}

func TestMultiDimRoundTrip(t *testing.T) {
	sv := specval.Default()
	records := []Record{
		{Key: []uint32{1, 1}, Values: []float64{10}},
		{Key: []uint32{1, 2}, Values: []float64{20}},
		{Key: []uint32{2, 1}, Values: []float64{30}},
	}

	m := newMemStream()
	require.NoError(t, Encode(m, "_DATA_", 2, format.Parameter, records, sv))

	got, err := Decode(m, "_DATA_", format.Parameter, sv, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, r := range records {
		assert.Equal(t, r.Key, got[i].Key)
	}
}

func TestScalarRoundTrip(t *testing.T) {
	sv := specval.Default()
	records := []Record{{Key: []uint32{}, Values: []float64{42}}}

	m := newMemStream()
	require.NoError(t, Encode(m, "_DATA_", 0, format.Parameter, records, sv))

	got, err := Decode(m, "_DATA_", format.Parameter, sv, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{42}, got[0].Values)
}

func TestDecodeFiltersViaKeep(t *testing.T) {
	sv := specval.Default()
	records := []Record{
		{Key: []uint32{1}, Values: []float64{1}},
		{Key: []uint32{2}, Values: []float64{2}},
		{Key: []uint32{3}, Values: []float64{3}},
	}

	m := newMemStream()
	require.NoError(t, Encode(m, "_DATA_", 1, format.Parameter, records, sv))

	got, err := Decode(m, "_DATA_", format.Parameter, sv, func(key []uint32) bool {
		return key[0] != 2
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
}
