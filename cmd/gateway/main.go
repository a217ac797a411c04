package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
	"github.com/hewenyu/mesh-gateway/internal/gateway"
	"github.com/hewenyu/mesh-gateway/internal/registry"
)

var configFile string

func init() {
	// 解析命令行参数
	flag.StringVar(&configFile, "config", "", "配置文件路径")
}

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger, err := config.NewLogger(cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	// 构建静态服务注册表，启动后只读
	reg := registry.Default()

	// 打印启动信息
	logger.Info("Mesh Gateway Starting...",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Gateway.Port),
		zap.Int("services", len(reg.Services())),
		zap.String("client_url", cfg.Gateway.ClientURL),
	)

	// 创建并启动网关
	server, err := gateway.NewServer(cfg, reg, logger)
	if err != nil {
		logger.Error("创建网关失败", zap.Error(err))
		os.Exit(1)
	}
	if err := server.Start(); err != nil {
		logger.Error("启动网关失败", zap.Error(err))
		os.Exit(1)
	}

	// 等待信号以优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("接收到关闭信号，正在优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("关闭网关出错", zap.Error(err))
		os.Exit(1)
	}
}
