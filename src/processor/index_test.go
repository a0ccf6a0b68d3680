package processor

import (
	"testing"

	"AirportIndex/src/datasource/file"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(columns []string, records ...[]string) []file.Row {
	header := file.NewHeader(columns)
	rows := make([]file.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, file.NewRow(header, rec))
	}
	return rows
}

func TestBuildIndexOneToOneLastWins(t *testing.T) {
	rows := rowsOf([]string{"code", "name"},
		[]string{"US", "United States"},
		[]string{"GB", "United Kingdom"},
		[]string{"US", "USA"},
	)

	idx := BuildIndex(rows, "code", false)
	assert.False(t, idx.Multiple())
	assert.Equal(t, "code", idx.Key())
	assert.Equal(t, 2, idx.Len())

	us, ok := idx.One("US")
	require.True(t, ok)
	assert.Equal(t, rows[2], us)

	gb, ok := idx.One("GB")
	require.True(t, ok)
	assert.Equal(t, "United Kingdom", gb.Value("name"))

	_, ok = idx.One("FR")
	assert.False(t, ok)
	assert.Nil(t, idx.Many("US"))
}

func TestBuildIndexOneToManyKeepsOrder(t *testing.T) {
	rows := rowsOf([]string{"id", "airport_ident", "le_ident"},
		[]string{"1", "KSFO", "01L"},
		[]string{"2", "EGLL", "09L"},
		[]string{"3", "KSFO", "01R"},
		[]string{"4", "KSFO", "10L"},
	)

	idx := BuildIndex(rows, "airport_ident", true)
	assert.True(t, idx.Multiple())
	assert.Equal(t, 2, idx.Len())

	ksfo := idx.Many("KSFO")
	require.Len(t, ksfo, 3)
	assert.Equal(t, []file.Row{rows[0], rows[2], rows[3]}, ksfo)
	assert.Equal(t, []file.Row{rows[1]}, idx.Many("EGLL"))
	assert.Nil(t, idx.Many("LFPG"))

	_, ok := idx.One("KSFO")
	assert.False(t, ok)
}

func TestBuildIndexEmptyAndMissingKeys(t *testing.T) {
	rows := rowsOf([]string{"ident", "associated_airport"},
		[]string{"SFO", "KSFO"},
		[]string{"OAK", ""},
		[]string{"PYE", ""},
	)

	idx := BuildIndex(rows, "associated_airport", true)
	assert.Len(t, idx.Many(""), 2)

	// 不存在的键列: 所有行都落在空键下
	byMissing := BuildIndex(rows, "no_such_column", false)
	assert.Equal(t, 1, byMissing.Len())
	last, ok := byMissing.One("")
	require.True(t, ok)
	assert.Equal(t, "PYE", last.Value("ident"))
}

func TestNilIndexLookups(t *testing.T) {
	var idx *Index
	_, ok := idx.One("US")
	assert.False(t, ok)
	assert.Nil(t, idx.Many("KSFO"))
}
