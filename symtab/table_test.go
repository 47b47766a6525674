package symtab

import (
	"testing"

	"github.com/gdxlib/gdx/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndFindCaseInsensitive(t *testing.T) {
	tbl := NewTable()

	num, err := tbl.Add("demand", 1, format.Parameter, 0, "demand at each market")
	require.NoError(t, err)
	assert.Equal(t, 1, num)

	got, ok := tbl.FindByName("DEMAND")
	require.True(t, ok)
	assert.Equal(t, num, got)

	sym, ok := tbl.Get(num)
	require.True(t, ok)
	assert.Equal(t, "demand", sym.Name) // original case preserved
}

func TestAddRejectsBadName(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Add("1bad", 1, format.Set, 0, "")
	require.Error(t, err)
}

func TestAddRejectsDuplicate(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Add("i", 1, format.Set, 0, "")
	require.NoError(t, err)

	_, err = tbl.Add("I", 1, format.Set, 0, "")
	require.Error(t, err)
}

func TestMarkWrittenAndComments(t *testing.T) {
	tbl := NewTable()
	num, _ := tbl.Add("j", 1, format.Set, 0, "")

	require.NoError(t, tbl.AddComment(num, "* a comment"))
	require.NoError(t, tbl.MarkWritten(num, 3, 0, false, 128))

	assert.True(t, tbl.Written(num))

	sym, _ := tbl.Get(num)
	assert.Equal(t, 3, sym.RecordCount)
	assert.Equal(t, []string{"* a comment"}, sym.Comments)
}

func TestUniverseSymbol(t *testing.T) {
	u := Universe()
	assert.Equal(t, 0, u.Number)
	assert.Equal(t, format.Set, u.Type)
}
