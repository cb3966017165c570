package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/document"
)

func TestFromTable_FirstRowOnly(t *testing.T) {
	tbl := &document.Table{
		Columns: []string{"Trees", "SoilPH", "Activity"},
		Rows: [][]string{
			{"12000", "6.2", "0.7"},
			{"1", "1", "1"},
		},
	}

	fs := FromTable(tbl)

	tc, ok := fs.Int(constants.FieldTreeCount)
	require.True(t, ok)
	assert.Equal(t, int64(12000), tc)
	ph, ok := fs.Float(constants.FieldSoilPH)
	require.True(t, ok)
	assert.InDelta(t, 6.2, ph, 1e-9)
	act, ok := fs.Float(constants.FieldAnimalActivity)
	require.True(t, ok)
	assert.InDelta(t, 0.7, act, 1e-9)
	assert.Len(t, fs, 3)
}

func TestFromTable_AreaColumn(t *testing.T) {
	for _, raw := range []string{"1234.5", "1,234.5", " 1234.5 "} {
		tbl := &document.Table{Columns: []string{"Area (km²)"}, Rows: [][]string{{raw}}}
		area, ok := FromTable(tbl).Float(constants.FieldArea)
		require.True(t, ok, raw)
		assert.InDelta(t, 1234.5, area, 1e-9)
	}
}

func TestFromTable_SynthesizesCoordinates(t *testing.T) {
	tbl := &document.Table{
		Columns: []string{"Location", "Latitude", "Lng"},
		Rows:    [][]string{{"Sample Forest", "28.5983", "83.931"}},
	}

	fs := FromTable(tbl)

	loc, ok := fs.Text(constants.FieldLocation)
	require.True(t, ok)
	assert.Equal(t, "Sample Forest", loc)
	coords, ok := fs.Text(constants.FieldCoordinates)
	require.True(t, ok)
	assert.Equal(t, "28.5983,83.931", coords)
}

func TestFromTable_ExplicitCoordinatesWin(t *testing.T) {
	tbl := &document.Table{
		Columns: []string{"coords", "lat", "lon"},
		Rows:    [][]string{{"1,2", "28", "83"}},
	}
	coords, _ := FromTable(tbl).Text(constants.FieldCoordinates)
	assert.Equal(t, "1,2", coords)
}

func TestFromTable_DropsUnknownAndMalformed(t *testing.T) {
	tbl := &document.Table{
		Columns: []string{"Ranger", "Tree Count", "Soil Health"},
		Rows:    [][]string{{"Asha", "lots", "0.4"}},
	}

	fs := FromTable(tbl)

	assert.False(t, fs.Has(constants.FieldTreeCount))
	assert.True(t, fs.Has(constants.FieldSoilHealth))
	assert.Len(t, fs, 1)
}

func TestFromTable_Empty(t *testing.T) {
	assert.Empty(t, FromTable(&document.Table{}))
	assert.Empty(t, FromTable(&document.Table{Columns: []string{"trees"}}))
	assert.Empty(t, FromTable(nil))
}
