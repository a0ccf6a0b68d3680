package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
)

const DefaultBaseURL = "https://ourairports.com/data/"

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Source struct {
		BaseURL     string   `json:"base_url"`    // 数据源地址前缀
		Timeout     Duration `json:"timeout"`     // 单个文件下载超时, 0 表示不限制
		Concurrency int      `json:"concurrency"` // 并发下载数, <=1 时顺序下载
		Offline     bool     `json:"offline"`     // 跳过下载, 直接使用 raw_dir 中已有的文件
	} `json:"source"`

	RawDir        string `json:"raw_dir"`    // 原始CSV存储目录
	OutputDir     string `json:"output_dir"` // 机场JSON输出目录
	LogName       string `json:"log_name"`
	LogLevel      string `json:"log_level"`
	LogMaxSize    string `json:"log_max_size"`
	ReportFile    string `json:"report_file"` // 汇总xlsx, 为空则不生成
	ProgressEvery int    `json:"progress_every"`
}

// Dataset 单个数据集: 文件名及建立索引所用的列
type Dataset struct {
	File string `json:"file"`
	Key  string `json:"key"`
}

type DataConfig struct {
	Airports      Dataset `json:"airports"`
	Runways       Dataset `json:"runways"`
	Frequencies   Dataset `json:"frequencies"`
	Countries     Dataset `json:"countries"`
	Regions       Dataset `json:"regions"`
	Navaids       Dataset `json:"navaids"`
	CountryColumn string  `json:"country_column"` // 机场表中的国家代码列
	RegionColumn  string  `json:"region_column"`  // 机场表中的地区代码列
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
)

// Default 返回内置默认配置
func Default() *Config {
	cfg := &Config{
		RawDir:        "raw",
		OutputDir:     "icao",
		LogName:       "app.log",
		LogLevel:      "info",
		LogMaxSize:    "10 * 1024 * 1024",
		ProgressEvery: 1000,
	}
	cfg.Source.BaseURL = DefaultBaseURL
	cfg.Source.Concurrency = 1
	return cfg
}

// DefaultData 返回 ourairports.com 数据集的默认文件名和键列
func DefaultData() *DataConfig {
	return &DataConfig{
		Airports:      Dataset{File: "airports.csv", Key: "ident"},
		Runways:       Dataset{File: "runways.csv", Key: "airport_ident"},
		Frequencies:   Dataset{File: "airport-frequencies.csv", Key: "airport_ident"},
		Countries:     Dataset{File: "countries.csv", Key: "code"},
		Regions:       Dataset{File: "regions.csv", Key: "code"},
		Navaids:       Dataset{File: "navaids.csv", Key: "associated_airport"},
		CountryColumn: "iso_country",
		RegionColumn:  "iso_region",
	}
}

// LoadConfig 只加载一次配置, 之后的调用返回同一实例
func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, nil, err
	}
	return cfg, dcfg, nil
}

// readFile 缺失的文件返回 nil 内容, 由解析阶段使用默认值
func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	cfg := Default()
	if len(data) > 0 {
		if err := json.Unmarshal(data, cfg); err != nil {
			errChan <- fmt.Errorf("解析Config失败: %w", err)
			return
		}
	}
	resultChan <- cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	dcfg := DefaultData()
	if len(data) > 0 {
		if err := json.Unmarshal(data, dcfg); err != nil {
			errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
			return
		}
	}
	resultChan <- dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg  *Config
		dcfg *DataConfig
		errs []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, nil, combineErrors(errs)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// normalize 展开路径中的 ~ 并校验数值项
func (c *Config) normalize() error {
	for _, p := range []*string{&c.RawDir, &c.OutputDir, &c.LogName, &c.ReportFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("路径展开失败 %s: %w", *p, err)
		}
		*p = expanded
	}
	if c.Source.Concurrency < 1 {
		c.Source.Concurrency = 1
	}
	if _, err := ParseSize(c.LogMaxSize); err != nil {
		return err
	}
	return nil
}

// Files 按固定顺序返回全部数据集
func (dc *DataConfig) Files() []Dataset {
	return []Dataset{dc.Airports, dc.Runways, dc.Frequencies, dc.Countries, dc.Regions, dc.Navaids}
}

// ParseSize 解析 "10 * 1024 * 1024" 形式的乘积表达式, 空字符串表示不限制
func ParseSize(expr string) (int64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, nil
	}
	var result int64 = 1
	for _, part := range strings.Split(expr, "*") {
		num, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("log_max_size 格式错误 %q: %w", expr, err)
		}
		result *= num
	}
	return result, nil
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
