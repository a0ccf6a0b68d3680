package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadConfigs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{
		"source": {"base_url": "http://localhost:8080/data", "timeout": "30s", "concurrency": 3},
		"output_dir": "out",
		"report_file": "summary.xlsx"
	}`)
	writeFile(t, dir, "dataconfig.json", `{
		"navaids": {"file": "navaids-2024.csv", "key": "associated_airport"}
	}`)

	cfg, dcfg, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/data", cfg.Source.BaseURL)
	assert.Equal(t, Duration(30*time.Second), cfg.Source.Timeout)
	assert.Equal(t, 3, cfg.Source.Concurrency)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "summary.xlsx", cfg.ReportFile)
	// 未配置的项保留默认值
	assert.Equal(t, "raw", cfg.RawDir)
	assert.Equal(t, 1000, cfg.ProgressEvery)

	assert.Equal(t, "navaids-2024.csv", dcfg.Navaids.File)
	assert.Equal(t, "airports.csv", dcfg.Airports.File)
	assert.Equal(t, "iso_country", dcfg.CountryColumn)
}

func TestLoadConfigsMissingFiles(t *testing.T) {
	cfg, dcfg, err := loadConfigs(t.TempDir(), "config.json", "dataconfig.json")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.Source.BaseURL)
	assert.Equal(t, 1, cfg.Source.Concurrency)
	assert.Equal(t, DefaultData(), dcfg)
}

func TestLoadConfigsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"source": {"timeout": "soon"}}`)
	writeFile(t, dir, "dataconfig.json", `{"airports": 12}`)

	_, _, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "解析Config失败")
	assert.Contains(t, err.Error(), "解析DataConfig失败")
}

func TestLoadConfigsBadLogSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"log_max_size": "ten megabytes"}`)

	_, _, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.Error(t, err)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		expr    string
		want    int64
		wantErr bool
	}{
		{expr: "10 * 1024 * 1024", want: 10 << 20},
		{expr: "4096", want: 4096},
		{expr: "", want: 0},
		{expr: "2*x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseSize(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataConfigFiles(t *testing.T) {
	files := DefaultData().Files()
	require.Len(t, files, 6)
	assert.Equal(t, "airports.csv", files[0].File)
	assert.Equal(t, "navaids.csv", files[5].File)
}
