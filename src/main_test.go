package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOffline(t *testing.T) {
	dir := t.TempDir()
	rawDir := filepath.Join(dir, "raw")
	outDir := filepath.Join(dir, "icao")
	require.NoError(t, os.MkdirAll(rawDir, 0755))

	files := map[string]string{
		"airports.csv":            "ident,name,iso_country,iso_region\nKSFO,San Francisco,US,US-CA\n",
		"runways.csv":             "airport_ident,le_ident\n",
		"airport-frequencies.csv": "airport_ident,type\n",
		"countries.csv":           "code,name\nUS,United States\n",
		"regions.csv":             "code,name\n",
		"navaids.csv":             "ident,associated_airport\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(rawDir, name), []byte(body), 0644))
	}

	cfgDir := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	cfgJSON := `{
		"source": {"offline": true},
		"raw_dir": "` + filepath.ToSlash(rawDir) + `",
		"output_dir": "` + filepath.ToSlash(outDir) + `",
		"log_name": "` + filepath.ToSlash(filepath.Join(dir, "app.log")) + `",
		"log_level": "error"
	}`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(cfgJSON), 0644))

	require.NoError(t, run(cfgDir))
	assert.FileExists(t, filepath.Join(outDir, "KSFO.json"))
}
