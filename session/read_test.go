package session

import (
	"path/filepath"
	"testing"

	"github.com/gdxlib/gdx/compress"
	"github.com/gdxlib/gdx/domain"
	"github.com/gdxlib/gdx/filter"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/specval"
	"github.com/gdxlib/gdx/stream"
	"github.com/gdxlib/gdx/uel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeThenReopen(t *testing.T, write func(*stream.ByteStream)) *stream.ByteStream {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.gdx")

	w, err := stream.OpenWrite(path, false, compress.AlgorithmNone)
	require.NoError(t, err)
	write(w)
	require.NoError(t, w.Close())

	r, err := stream.OpenRead(path, compress.AlgorithmNone)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	return r
}

func TestReadRawRoundTrip(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()

	r := writeThenReopen(t, func(w *stream.ByteStream) {
		s := NewWriteSession(ModeRaw, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)
		require.NoError(t, s.WriteRaw([]uint32{1}, []float64{10}))
		require.NoError(t, s.WriteRaw([]uint32{2}, []float64{20}))
		_, _, err := s.Done(w, "_DATA_")
		require.NoError(t, err)
	})

	rs, err := NewReadSession(r, "_DATA_", 1, format.Parameter, sv, ModeRaw, uels, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Count())

	key, values, ok := rs.ReadNextRaw()
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, key)
	assert.Equal(t, []float64{10}, values)

	_, _, ok = rs.ReadNextRaw()
	require.True(t, ok)

	_, _, ok = rs.ReadNextRaw()
	assert.False(t, ok)
}

func TestReadMappedTranslatesUserMap(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()
	_, err := uels.RegisterMap(42, "tokyo")
	require.NoError(t, err)

	r := writeThenReopen(t, func(w *stream.ByteStream) {
		s := NewWriteSession(ModeRaw, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)
		require.NoError(t, s.WriteRaw([]uint32{1}, []float64{99}))
		_, _, err := s.Done(w, "_DATA_")
		require.NoError(t, err)
	})

	rs, err := NewReadSession(r, "_DATA_", 1, format.Parameter, sv, ModeMapped, uels, nil, nil)
	require.NoError(t, err)

	key, values, ok := rs.ReadNextMapped()
	require.True(t, ok)
	assert.Equal(t, []int32{42}, key)
	assert.Equal(t, []float64{99}, values)
}

func TestReadFilteredExcludesNonMembers(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()
	_, err := uels.RegisterMap(1, "a")
	require.NoError(t, err)
	_, err = uels.RegisterMap(2, "b")
	require.NoError(t, err)

	r := writeThenReopen(t, func(w *stream.ByteStream) {
		s := NewWriteSession(ModeRaw, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)
		require.NoError(t, s.WriteRaw([]uint32{1}, []float64{1}))
		require.NoError(t, s.WriteRaw([]uint32{2}, []float64{2}))
		_, _, err := s.Done(w, "_DATA_")
		require.NoError(t, err)
	})

	registry := filter.NewRegistry()
	require.NoError(t, registry.RegisterStart(7))
	require.NoError(t, registry.Register(7, 1))
	require.NoError(t, registry.RegisterDone(7))

	rs, err := NewReadSession(r, "_DATA_", 1, format.Parameter, sv, ModeRaw, uels, []DimAction{DimAction(7)}, registry)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Count())

	key, _, ok := rs.ReadNextRaw()
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, key)
}

func TestReadWrongModeRejected(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()

	r := writeThenReopen(t, func(w *stream.ByteStream) {
		s := NewWriteSession(ModeRaw, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)
		require.NoError(t, s.WriteRaw([]uint32{1}, []float64{1}))
		_, _, err := s.Done(w, "_DATA_")
		require.NoError(t, err)
	})

	rs, err := NewReadSession(r, "_DATA_", 1, format.Parameter, sv, ModeRaw, uels, nil, nil)
	require.NoError(t, err)

	_, _, ok := rs.ReadNextMapped()
	assert.False(t, ok)
}
