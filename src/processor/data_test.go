package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataProcessor(t *testing.T) {
	airports := rowsOf([]string{"ident", "name", "iso_country", "iso_region"},
		[]string{"KSFO", "San Francisco International Airport", "US", "US-CA"},
		[]string{"EGLL", "London Heathrow Airport", "GB", "GB-ENG"},
		[]string{"XXXX", "Nowhere", "ZZ", "ZZ-1"},
	)
	p := NewDataProcessor(Join(airports, testIndexes(), defaultColumns), defaultColumns)

	df := p.DataFrame()
	require.NoError(t, df.Err)
	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, []string{
		ColIdent, ColName, ColCountry, ColCountryName, ColRegion, ColRegionName,
		ColRunways, ColFrequencies, ColNavaids,
	}, df.Names())
	assert.Equal(t, []string{"United States", "United Kingdom", ""}, df.Col(ColCountryName).Records())
	assert.Equal(t, []string{"2", "0", "0"}, df.Col(ColRunways).Records())

	metrics, err := p.CalculateMetrics()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"total_airports":    3,
		"with_runways":      1,
		"with_frequencies":  1,
		"with_navaids":      1,
		"unmatched_country": 1,
		"unmatched_region":  2,
	}, metrics)
}

func TestDataProcessorEmpty(t *testing.T) {
	p := NewDataProcessor(nil, defaultColumns)
	metrics, err := p.CalculateMetrics()
	require.NoError(t, err)
	assert.Equal(t, 0, metrics["total_airports"])
	assert.Equal(t, 0, metrics["unmatched_country"])
}
