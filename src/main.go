package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"AirportIndex/src/config"
	"AirportIndex/src/processor"
	"AirportIndex/src/storage"
)

func main() {
	if err := run("./config"); err != nil {
		os.Exit(1)
	}
}

// run 加载配置并执行一次完整的构建, 失败时错误已写入日志
func run(jsonFolder string) error {
	cfg, dcfg, err := config.LoadConfig(jsonFolder, "config.json", "dataconfig.json")
	if err != nil {
		log.Println("加载配置失败:", err)
		return err
	}

	// 初始化日志系统
	maxSize, _ := config.ParseSize(cfg.LogMaxSize)
	logger, err := storage.NewLogger(cfg.LogName, maxSize, os.Stderr)
	if err != nil {
		log.Println("Failed to initialize logger:", err)
		return err
	}
	defer logger.Close()
	logger.SetMinLevel(storage.ParseLevel(cfg.LogLevel))

	// Ctrl+C 取消正在进行的下载
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(fmt.Sprintf("开始构建: 数据源 %s, 输出目录 %s", cfg.Source.BaseURL, cfg.OutputDir))
	res, err := processor.Build(ctx, cfg, dcfg, logger, processor.Options{})
	if err != nil {
		logger.Error("构建失败: " + err.Error())
		return err
	}

	logger.Info(fmt.Sprintf("构建完成: %d 个机场, 耗时 %v", res.Written, res.Elapsed))
	return nil
}
