package processor

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"AirportIndex/src/config"
	"AirportIndex/src/datasource/file"
	"AirportIndex/src/datasource/remote"
	"AirportIndex/src/utils"
)

// Logger 流水线使用的日志接口, *storage.Logger 满足该接口
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warning(msg string)
}

type nopLogger struct{}

func (nopLogger) Debug(string)   {}
func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}

// Result 一次运行的统计
type Result struct {
	Airports int
	Written  int
	Metrics  map[string]interface{}
	Elapsed  time.Duration
}

// Options 可选项, 零值即可
type Options struct {
	Client   *http.Client
	Progress ProgressFunc // 为 nil 时按 progress_every 写日志
}

// Build 下载 -> 解析 -> 建索引 -> 关联 -> 输出, 任何一步失败立即返回
func Build(ctx context.Context, cfg *config.Config, dcfg *config.DataConfig, log Logger, opts Options) (*Result, error) {
	if log == nil {
		log = nopLogger{}
	}
	start := time.Now()

	for _, dir := range []string{cfg.RawDir, cfg.OutputDir} {
		if err := file.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("创建目录失败: %w", err)
		}
	}

	if cfg.Source.Offline {
		log.Info("离线模式, 跳过下载")
	} else if err := fetchDatasets(ctx, cfg, dcfg, log, opts.Client); err != nil {
		return nil, fmt.Errorf("下载数据集失败: %w", err)
	}

	airports, err := readDataset(cfg.RawDir, dcfg.Airports, log)
	if err != nil {
		return nil, err
	}
	idx, err := buildIndexes(cfg.RawDir, dcfg, log)
	if err != nil {
		return nil, err
	}

	cols := JoinColumns{Ident: dcfg.Airports.Key, Country: dcfg.CountryColumn, Region: dcfg.RegionColumn}
	joined := Join(airports, idx, cols)

	progress := opts.Progress
	if progress == nil {
		progress = logProgress(log, cfg.ProgressEvery)
	}
	written := 0
	emitter := NewEmitter(cfg.OutputDir, func(current, total int, ident string) {
		written = current
		progress(current, total, ident)
	})
	if err := emitter.Emit(joined); err != nil {
		return nil, fmt.Errorf("写出机场JSON失败(已写出 %d/%d): %w", written, len(joined), err)
	}
	log.Info(fmt.Sprintf("已写出 %d 个机场文件到 %s", written, cfg.OutputDir))

	summary := NewDataProcessor(joined, cols)
	metrics, err := summary.CalculateMetrics()
	if err != nil {
		return nil, fmt.Errorf("计算汇总指标失败: %w", err)
	}
	log.Info("汇总: " + formatMetrics(metrics))

	if cfg.ReportFile != "" {
		if err := utils.SaveToExcel(summary.DataFrame(), cfg.ReportFile); err != nil {
			return nil, fmt.Errorf("生成汇总报表失败: %w", err)
		}
		log.Info("汇总报表已保存到: " + cfg.ReportFile)
	}

	return &Result{
		Airports: len(joined),
		Written:  written,
		Metrics:  metrics,
		Elapsed:  time.Since(start),
	}, nil
}

func fetchDatasets(ctx context.Context, cfg *config.Config, dcfg *config.DataConfig, log Logger, client *http.Client) error {
	datasets := dcfg.Files()
	jobs := make([]remote.Job, 0, len(datasets))
	for _, ds := range datasets {
		jobs = append(jobs, remote.Job{
			URL:  remote.URL(cfg.Source.BaseURL, ds.File),
			Dest: filepath.Join(cfg.RawDir, ds.File),
		})
	}

	fetcher := remote.NewFetcher(client, time.Duration(cfg.Source.Timeout))
	fetcher.OnDone = func(job remote.Job, n int64, elapsed time.Duration) {
		log.Info(fmt.Sprintf("已下载 %s (%d 字节, 耗时 %v)", job.URL, n, elapsed.Round(time.Millisecond)))
	}
	log.Info(fmt.Sprintf("开始下载 %d 个数据集(并发: %d)", len(jobs), cfg.Source.Concurrency))
	return fetcher.FetchAll(ctx, jobs, cfg.Source.Concurrency)
}

func readDataset(rawDir string, ds config.Dataset, log Logger) ([]file.Row, error) {
	path := filepath.Join(rawDir, ds.File)
	rows, err := file.ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", ds.File, err)
	}
	if len(rows) > 0 && !rows[0].Header().Has(ds.Key) {
		log.Warning(fmt.Sprintf("%s 中没有列 %s, 所有行将归入空键", ds.File, ds.Key))
	}
	log.Info(fmt.Sprintf("读取 %s: %d 行", ds.File, len(rows)))
	return rows, nil
}

func buildIndexes(rawDir string, dcfg *config.DataConfig, log Logger) (Indexes, error) {
	var idx Indexes
	datasets := []struct {
		ds       config.Dataset
		multiple bool
		target   **Index
	}{
		{dcfg.Runways, true, &idx.Runways},
		{dcfg.Frequencies, true, &idx.Frequencies},
		{dcfg.Countries, false, &idx.Countries},
		{dcfg.Regions, false, &idx.Regions},
		{dcfg.Navaids, true, &idx.Navaids},
	}
	for _, s := range datasets {
		rows, err := readDataset(rawDir, s.ds, log)
		if err != nil {
			return Indexes{}, err
		}
		*s.target = BuildIndex(rows, s.ds.Key, s.multiple)
		log.Debug(fmt.Sprintf("索引 %s 按 %s: %d 个键", s.ds.File, s.ds.Key, (*s.target).Len()))
	}
	return idx, nil
}

// logProgress 每条记录写 DEBUG, 每 every 条及最后一条写 INFO
func logProgress(log Logger, every int) ProgressFunc {
	return func(current, total int, ident string) {
		msg := fmt.Sprintf("%s %d / %d", ident, current, total)
		if current == total || (every > 0 && current%every == 0) {
			log.Info(msg)
			return
		}
		log.Debug(msg)
	}
}

func formatMetrics(metrics map[string]interface{}) string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, metrics[k]))
	}
	return strings.Join(parts, " ")
}
