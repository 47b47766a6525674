package stream

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdxlib/gdx/compress"
	"github.com/stretchr/testify/require"
)

func TestByteStreamRoundTripUncompressed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "plain.gdx")

	w, err := OpenWrite(name, false, compress.AlgorithmNone)
	require.NoError(t, err)
	require.NoError(t, w.WriteByte(0x7B))
	require.NoError(t, w.WriteUint16(0x1234))
	require.NoError(t, w.WriteInt32(-42))
	require.NoError(t, w.WriteInt64(1<<40))
	require.NoError(t, w.WriteFloat64(3.14159265358979))
	require.NoError(t, w.WriteShortString("demand"))
	require.NoError(t, w.Close())

	r, err := OpenRead(name, compress.AlgorithmNone)
	require.NoError(t, err)

	b, err := r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x7B), b)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(-42), i32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	require.Equal(t, int64(1<<40), i64)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	require.InDelta(t, 3.14159265358979, f64, 1e-15)

	s, err := r.ReadShortString()
	require.NoError(t, err)
	require.Equal(t, "demand", s)

	require.NoError(t, r.Close())
}

func TestByteStreamRoundTripCompressed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "compressed.gdx")

	w, err := OpenWrite(name, true, compress.AlgorithmZlib)
	require.NoError(t, err)

	// The first 255 bytes of a repeated string give a small, single-frame,
	// well-compressing payload through writeFrame's compress-or-fallback path.
	text := strings.Repeat("chicago-topeka-newyork ", 4000)
	require.NoError(t, w.WriteShortString(text[:255]))
	require.NoError(t, w.WriteInt64(int64(len(text))))
	require.NoError(t, w.Close())

	r, err := OpenRead(name, compress.AlgorithmZlib)
	require.NoError(t, err)

	s, err := r.ReadShortString()
	require.NoError(t, err)
	require.Equal(t, text[:255], s)

	n, err := r.ReadInt64()
	require.NoError(t, err)
	require.Equal(t, int64(len(text)), n)

	require.NoError(t, r.Close())
}

func TestByteStreamSeekInvalidatesReadWindow(t *testing.T) {
	name := filepath.Join(t.TempDir(), "seek.gdx")

	w, err := OpenWrite(name, false, compress.AlgorithmNone)
	require.NoError(t, err)
	require.NoError(t, w.WriteInt32(111))
	off, err := w.Align()
	require.NoError(t, err)
	require.NoError(t, w.WriteInt32(222))
	require.NoError(t, w.Close())

	r, err := OpenRead(name, compress.AlgorithmNone)
	require.NoError(t, err)

	first, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(111), first)

	require.NoError(t, r.Seek(off))

	second, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(222), second)

	require.NoError(t, r.Close())
}

func TestByteStreamRewriteAt(t *testing.T) {
	name := filepath.Join(t.TempDir(), "rewrite.gdx")

	w, err := OpenWrite(name, false, compress.AlgorithmNone)
	require.NoError(t, err)

	placeholderOff, err := w.Align()
	require.NoError(t, err)
	require.NoError(t, w.WriteInt64(-1))
	require.NoError(t, w.WriteShortString("payload"))

	var fixed [8]byte
	w.Engine().PutUint64(fixed[:], 987654321)
	require.NoError(t, w.RewriteAt(placeholderOff, fixed[:]))
	require.NoError(t, w.Close())

	r, err := OpenRead(name, compress.AlgorithmNone)
	require.NoError(t, err)

	v, err := r.ReadInt64()
	require.NoError(t, err)
	require.Equal(t, int64(987654321), v)

	s, err := r.ReadShortString()
	require.NoError(t, err)
	require.Equal(t, "payload", s)

	require.NoError(t, r.Close())
}

func TestByteStreamEmptyFilenameFails(t *testing.T) {
	_, err := OpenWrite("", false, compress.AlgorithmNone)
	require.Error(t, err)

	_, err = OpenRead("", compress.AlgorithmNone)
	require.Error(t, err)
}
