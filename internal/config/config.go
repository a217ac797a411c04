package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构
type Config struct {
	// 网关配置
	Gateway struct {
		ListenAddress string `mapstructure:"listen_address"`
		Port          int    `mapstructure:"port"`
		// 客户端地址，用于CORS白名单
		ClientURL string `mapstructure:"client_url"`
		// 请求体大小上限（字节）
		MaxBodySize int64 `mapstructure:"max_body_size"`
		// 健康探测超时
		HealthCheckTimeout time.Duration `mapstructure:"health_check_timeout"`
		// 每个服务的限流配额，键为服务名
		RateLimits map[string]int `mapstructure:"rate_limits"`
		// 未知服务的默认限流配额
		DefaultRateLimit int `mapstructure:"default_rate_limit"`
	} `mapstructure:"gateway"`

	// 队列Worker配置
	Worker struct {
		ListenAddress string `mapstructure:"listen_address"`
		Port          int    `mapstructure:"port"`
		// 通知服务转发地址
		NotificationURL string `mapstructure:"notification_url"`
		// 转发超时
		ForwardTimeout time.Duration `mapstructure:"forward_timeout"`
	} `mapstructure:"worker"`

	// 通知服务配置
	Notification struct {
		ListenAddress string `mapstructure:"listen_address"`
		Port          int    `mapstructure:"port"`
		// 生产模式下使用真实推送后端，否则使用模拟后端
		Production bool `mapstructure:"production"`
		// 推送服务端地址（生产模式）
		PushEndpoint string `mapstructure:"push_endpoint"`
		// 推送服务端密钥（生产模式）
		PushServerKey string `mapstructure:"push_server_key"`
	} `mapstructure:"notification"`

	// 日志配置
	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
}

// LoadConfig 从文件和环境变量加载配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果指定了配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 设置配置文件名和路径
		v.SetConfigName("config")              // 配置文件名（无扩展名）
		v.AddConfigPath(".")                   // 当前目录
		v.AddConfigPath("./configs")           // configs目录
		v.AddConfigPath("$HOME/.mesh-gateway") // 用户目录
		v.AddConfigPath("/etc/mesh-gateway")   // 系统目录
	}

	// 配置文件格式
	v.SetConfigType("yaml")

	// 尝试从配置文件加载
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，仅记录警告；其他错误则返回
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件错误: %w", err)
		}
	}

	// 绑定环境变量
	v.SetEnvPrefix("MESH_GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 从环境变量覆盖
	bindEnvVariables(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置错误: %w", err)
	}

	return &config, nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 网关默认配置
	v.SetDefault("gateway.listen_address", "0.0.0.0")
	v.SetDefault("gateway.port", 8000)
	v.SetDefault("gateway.client_url", "http://localhost:3000")
	v.SetDefault("gateway.max_body_size", 10*1024*1024)
	v.SetDefault("gateway.health_check_timeout", "5s")
	v.SetDefault("gateway.default_rate_limit", 100)
	v.SetDefault("gateway.rate_limits", map[string]int{
		"main-app":             200,
		"email-service":        50,
		"chat-service":         300,
		"notification-service": 100,
		"worker-service":       100,
	})

	// Worker默认配置
	v.SetDefault("worker.listen_address", "0.0.0.0")
	v.SetDefault("worker.port", 3004)
	v.SetDefault("worker.notification_url", "http://localhost:3003")
	v.SetDefault("worker.forward_timeout", "5s")

	// 通知服务默认配置
	v.SetDefault("notification.listen_address", "0.0.0.0")
	v.SetDefault("notification.port", 3003)
	v.SetDefault("notification.production", false)
	v.SetDefault("notification.push_endpoint", "")
	v.SetDefault("notification.push_server_key", "")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", true)
}

// bindEnvVariables 绑定特定的环境变量
func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("gateway.port", "MESH_GATEWAY_PORT")
	v.BindEnv("gateway.client_url", "MESH_GATEWAY_CLIENT_URL")
	v.BindEnv("gateway.max_body_size", "MESH_GATEWAY_MAX_BODY_SIZE")
	v.BindEnv("gateway.health_check_timeout", "MESH_GATEWAY_HEALTH_CHECK_TIMEOUT")
	v.BindEnv("worker.port", "MESH_GATEWAY_WORKER_PORT")
	v.BindEnv("worker.notification_url", "MESH_GATEWAY_WORKER_NOTIFICATION_URL")
	v.BindEnv("notification.port", "MESH_GATEWAY_NOTIFICATION_PORT")
	v.BindEnv("notification.production", "MESH_GATEWAY_NOTIFICATION_PRODUCTION")
}

// GetDefaultConfigPath 返回默认配置文件路径
func GetDefaultConfigPath() string {
	// 按顺序检查不同位置的配置文件
	paths := []string{
		"./config.yaml",
		"./configs/config.yaml",
		os.Getenv("HOME") + "/.mesh-gateway/config.yaml",
		"/etc/mesh-gateway/config.yaml",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
