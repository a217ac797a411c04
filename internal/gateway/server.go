package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
	"github.com/hewenyu/mesh-gateway/internal/gateway/handler"
	gatewaymw "github.com/hewenyu/mesh-gateway/internal/gateway/middleware"
	"github.com/hewenyu/mesh-gateway/internal/health"
	"github.com/hewenyu/mesh-gateway/internal/registry"
)

// Server 表示API网关服务
type Server struct {
	e      *echo.Echo
	host   string
	port   int
	logger config.Logger
}

// NewServer 创建一个新的API网关服务
func NewServer(cfg *config.Config, reg *registry.Registry, logger config.Logger) (*Server, error) {
	// 创建Echo实例
	e := echo.New()
	e.HideBanner = true

	// 添加中间件
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Gateway.ClientURL},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 网关核心中间件：路由解析 → 限流标注 → 请求校验
	e.Use(gatewaymw.Routing(reg))
	e.Use(gatewaymw.RateLimit(cfg.Gateway.RateLimits, cfg.Gateway.DefaultRateLimit))
	e.Use(gatewaymw.Validator(cfg.Gateway.MaxBodySize))

	// 创建健康探测器与汇总器
	prober := health.NewProber(cfg.Gateway.HealthCheckTimeout, logger)
	aggregator := health.NewAggregator(prober, reg.Services())

	// 创建处理器
	healthHandler := handler.NewHealthHandler(reg, aggregator)
	metricsHandler := handler.NewMetricsHandler(reg)
	discoveryHandler := handler.NewDiscoveryHandler(reg)
	proxyHandler, err := handler.NewProxyHandler(reg, logger)
	if err != nil {
		return nil, fmt.Errorf("创建代理处理器失败: %w", err)
	}

	// 注册网关自身端点
	e.GET("/health", healthHandler.GatewayHealth)
	e.GET("/services/health", healthHandler.ServicesHealth)
	e.GET("/metrics", metricsHandler.GetMetrics)
	e.GET("/discovery", discoveryHandler.GetDiscovery)

	// 其余请求按路由解析结果转发到下游服务
	e.Any("/*", proxyHandler.Forward)

	return &Server{
		e:      e,
		host:   cfg.Gateway.ListenAddress,
		port:   cfg.Gateway.Port,
		logger: logger,
	}, nil
}

// Start 启动服务
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.logger.Info("API网关启动", zap.String("address", addr))

	// 以非阻塞方式启动服务
	go func() {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("API网关启动失败", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown 关闭服务
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("正在关闭API网关...")
	return s.e.Shutdown(ctx)
}
