package session

import (
	"path/filepath"
	"testing"

	"github.com/gdxlib/gdx/compress"
	"github.com/gdxlib/gdx/domain"
	"github.com/gdxlib/gdx/format"
	"github.com/gdxlib/gdx/specval"
	"github.com/gdxlib/gdx/stream"
	"github.com/gdxlib/gdx/symtab"
	"github.com/gdxlib/gdx/uel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStream(t *testing.T) *stream.ByteStream {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.gdx")
	s, err := stream.OpenWrite(path, false, compress.AlgorithmNone)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func noDomain(dim int) []symtab.DomainRef {
	links := make([]symtab.DomainRef, dim)
	for i := range links {
		links[i] = symtab.DomainRef{SymbolNumber: -1, Relaxed: true}
	}
	return links
}

func TestWriteRawRoundTrip(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()

	s := NewWriteSession(ModeRaw, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)

	require.NoError(t, s.WriteRaw([]uint32{1}, []float64{10}))
	require.NoError(t, s.WriteRaw([]uint32{2}, []float64{20}))
	require.NoError(t, s.WriteRaw([]uint32{3}, []float64{30}))

	w := openTestStream(t)
	recordCount, errorCount, err := s.Done(w, "_DATA_")
	require.NoError(t, err)
	assert.Equal(t, 3, recordCount)
	assert.Equal(t, 0, errorCount)
}

func TestWriteRawOutOfOrderRejected(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()

	s := NewWriteSession(ModeRaw, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)

	require.NoError(t, s.WriteRaw([]uint32{3}, []float64{1}))
	err := s.WriteRaw([]uint32{1}, []float64{1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "Data not sorted when writing raw")
}

func TestWriteMappedSortsBeforeEncoding(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()

	_, err := uels.RegisterMap(10, "b")
	require.NoError(t, err)
	_, err = uels.RegisterMap(20, "a")
	require.NoError(t, err)

	s := NewWriteSession(ModeMapped, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)

	require.NoError(t, s.WriteMapped([]int32{20}, []float64{2}))
	require.NoError(t, s.WriteMapped([]int32{10}, []float64{1}))

	w := openTestStream(t)
	recordCount, _, err := s.Done(w, "_DATA_")
	require.NoError(t, err)
	assert.Equal(t, 2, recordCount)
}

func TestWriteStringAutoRegisters(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()

	s := NewWriteSession(ModeString, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)

	require.NoError(t, s.WriteString([]string{"newyork"}, []float64{1}))
	assert.Equal(t, 1, uels.Count())
}

func TestWriteDomainViolationRetained(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()

	checker.Observe(1, 5)

	links := []symtab.DomainRef{{SymbolNumber: 1}}
	s := NewWriteSession(ModeRaw, 2, 1, format.Parameter, links, uels, checker, sv)

	require.NoError(t, s.WriteRaw([]uint32{9}, []float64{1}))

	w := openTestStream(t)
	_, errorCount, err := s.Done(w, "_DATA_")
	require.NoError(t, err)
	assert.Equal(t, 1, errorCount)
	require.Len(t, s.ErrorRecords(), 1)
}

func TestWriteWrongModeRejected(t *testing.T) {
	sv := specval.Default()
	checker := domain.NewChecker(true)
	uels := uel.NewTable()

	s := NewWriteSession(ModeRaw, 1, 1, format.Parameter, noDomain(1), uels, checker, sv)
	err := s.WriteMapped([]int32{1}, []float64{1})
	require.Error(t, err)
}
