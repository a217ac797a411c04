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
	"github.com/hewenyu/mesh-gateway/internal/notification"
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

	// 投递后端按运行模式选择一次，之后不再切换
	mode := "simulated"
	if cfg.Notification.Production {
		mode = "production"
	}
	logger.Info("Notification Service Starting...",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Notification.Port),
		zap.String("delivery_mode", mode),
	)

	// 创建并启动通知服务
	sender := notification.NewSender(cfg, logger)
	dispatcher := notification.NewDispatcher(sender, logger)
	server := notification.NewServer(cfg, dispatcher, logger)
	if err := server.Start(); err != nil {
		logger.Error("启动通知服务失败", zap.Error(err))
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
		logger.Error("关闭通知服务出错", zap.Error(err))
		os.Exit(1)
	}
}
