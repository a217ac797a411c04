package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
)

// SendRequest 单条通知投递请求
type SendRequest struct {
	Payload *Payload `json:"payload"` // 通知内容
	Target  *Target  `json:"target"`  // 投递目标
}

// SendBulkRequest 批量通知投递请求
type SendBulkRequest struct {
	Payload *Payload  `json:"payload"` // 通知内容
	Targets []*Target `json:"targets"` // 投递目标列表
}

// SendResponse 通知投递响应
type SendResponse struct {
	Success        bool   `json:"success"`                   // 是否成功
	MessageID      string `json:"message_id,omitempty"`      // 投递消息ID
	DeliveredCount int    `json:"delivered_count,omitempty"` // 批量投递成功数
	FailedCount    int    `json:"failed_count,omitempty"`    // 批量投递失败数
	Message        string `json:"message,omitempty"`         // 可选消息
	Timestamp      string `json:"timestamp"`                 // 时间戳
}

// Server 表示通知服务
type Server struct {
	e          *echo.Echo
	host       string
	port       int
	dispatcher *Dispatcher
	logger     config.Logger
}

// NewServer 创建一个新的通知服务
func NewServer(cfg *config.Config, dispatcher *Dispatcher, logger config.Logger) *Server {
	// 创建Echo实例
	e := echo.New()
	e.HideBanner = true

	// 添加中间件
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	server := &Server{
		e:          e,
		host:       cfg.Notification.ListenAddress,
		port:       cfg.Notification.Port,
		dispatcher: dispatcher,
		logger:     logger,
	}

	// 注册路由
	e.GET("/health", server.healthHandler)
	e.POST("/api/notifications/send", server.sendHandler)
	e.POST("/api/notifications/send-bulk", server.sendBulkHandler)

	return server
}

// healthHandler 健康检查处理函数
func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "notification-service",
	})
}

// sendHandler 处理单条通知投递请求
func (s *Server) sendHandler(c echo.Context) error {
	req := new(SendRequest)
	if err := c.Bind(req); err != nil {
		s.logger.Error("解析通知投递请求失败", zap.Error(err))
		return c.JSON(http.StatusBadRequest, &SendResponse{
			Success:   false,
			Message:   "请求格式错误: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	// 验证请求
	if req.Payload == nil || req.Target == nil {
		return c.JSON(http.StatusBadRequest, &SendResponse{
			Success:   false,
			Message:   "请求参数无效：payload和target都是必需的",
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	if err := req.Target.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, &SendResponse{
			Success:   false,
			Message:   "请求参数无效: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	// 投递失败不是请求错误：结果以200返回，success标记结果
	result := s.dispatcher.Send(c.Request().Context(), req.Payload, req.Target)
	return c.JSON(http.StatusOK, &SendResponse{
		Success:   result.Success,
		MessageID: result.MessageID,
		Message:   result.Error,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// sendBulkHandler 处理批量通知投递请求
func (s *Server) sendBulkHandler(c echo.Context) error {
	req := new(SendBulkRequest)
	if err := c.Bind(req); err != nil {
		s.logger.Error("解析批量投递请求失败", zap.Error(err))
		return c.JSON(http.StatusBadRequest, &SendResponse{
			Success:   false,
			Message:   "请求格式错误: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	// 验证请求
	if req.Payload == nil || len(req.Targets) == 0 {
		return c.JSON(http.StatusBadRequest, &SendResponse{
			Success:   false,
			Message:   "请求参数无效：payload和targets都是必需的",
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	result := s.dispatcher.SendBulk(c.Request().Context(), req.Payload, req.Targets)
	return c.JSON(http.StatusOK, &SendResponse{
		Success:        result.Success,
		DeliveredCount: result.DeliveredCount,
		FailedCount:    result.FailedCount,
		Timestamp:      time.Now().Format(time.RFC3339),
	})
}

// Start 启动服务
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.logger.Info("通知服务启动", zap.String("address", addr))

	// 以非阻塞方式启动服务
	go func() {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("通知服务启动失败", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown 关闭服务
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("正在关闭通知服务...")
	return s.e.Shutdown(ctx)
}
