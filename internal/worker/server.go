package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
)

// State 表示Worker的生命周期状态
type State string

const (
	// StateIdle 尚未启动
	StateIdle State = "idle"
	// StateRunning 正在监听
	StateRunning State = "running"
	// StateShuttingDown 正在关闭
	StateShuttingDown State = "shutting-down"
	// StateStopped 已停止
	StateStopped State = "stopped"
)

// 队列名称
const (
	QueueNotification = "notification-queue"
	QueueChatTask     = "chat-task-queue"
)

// 消息类型
const (
	TypeChatNotification = "chat-notification"
)

// MessageData 队列消息的内容部分
type MessageData struct {
	Type string          `json:"type"` // 消息类型
	Data json.RawMessage `json:"data"` // 类型相关的负载
}

// ProcessRequest 队列处理请求
type ProcessRequest struct {
	QueueName   string       `json:"queueName"`   // 队列名称
	MessageData *MessageData `json:"messageData"` // 消息内容
}

// ProcessResponse 队列处理响应
type ProcessResponse struct {
	Success   bool   `json:"success"`             // 是否成功
	MessageID string `json:"messageId,omitempty"` // 消息ID
	Error     string `json:"error,omitempty"`     // 错误描述
	Timestamp string `json:"timestamp"`           // 时间戳
}

// QueueStats 单个队列的计数
type QueueStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
}

// StatsResponse 队列统计响应
type StatsResponse struct {
	Queues map[string]QueueStats `json:"queues"`
}

// Server 表示队列Worker服务
// 队列是同步交接：消息在请求内处理完毕，没有持久化和重投递，
// 进程退出时未处理的提交即丢失
type Server struct {
	e         *echo.Echo
	host      string
	port      int
	forwarder *Forwarder
	tasks     *TaskRunner
	logger    config.Logger

	mu    sync.Mutex
	state State
	stats map[string]*QueueStats
}

// NewServer 创建一个新的队列Worker服务
func NewServer(cfg *config.Config, forwarder *Forwarder, logger config.Logger) *Server {
	// 创建Echo实例
	e := echo.New()
	e.HideBanner = true

	// 添加中间件
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	server := &Server{
		e:         e,
		host:      cfg.Worker.ListenAddress,
		port:      cfg.Worker.Port,
		forwarder: forwarder,
		tasks:     NewTaskRunner(logger),
		logger:    logger,
		state:     StateIdle,
		stats: map[string]*QueueStats{
			QueueNotification: {},
			QueueChatTask:     {},
		},
	}

	// 注册路由
	e.GET("/health", server.healthHandler)
	e.POST("/api/queue/process", server.processHandler)
	e.GET("/api/queue/stats", server.statsHandler)

	return server
}

// State 返回当前生命周期状态
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start 启动服务，idle→running
func (s *Server) Start() error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("worker当前状态为%s，无法启动", s.state)
	}
	s.state = StateRunning
	s.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.logger.Info("队列Worker启动", zap.String("address", addr))

	// 以非阻塞方式启动服务
	go func() {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Error("队列Worker启动失败", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown 关闭服务，running→shutting-down→stopped
// 幂等：已停止后再次调用直接返回nil
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateStopped || s.state == StateShuttingDown {
		s.mu.Unlock()
		return nil
	}
	s.state = StateShuttingDown
	s.mu.Unlock()

	s.logger.Info("正在关闭队列Worker...")
	err := s.e.Shutdown(ctx)

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	return err
}

// healthHandler 健康检查处理函数
func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"state":     string(s.State()),
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "worker-service",
	})
}

// processHandler 处理队列消息
// 消息被接受后的处理失败（转发失败、未知类型）不影响本请求的成功响应
func (s *Server) processHandler(c echo.Context) error {
	req := new(ProcessRequest)
	if err := c.Bind(req); err != nil {
		s.logger.Error("解析队列处理请求失败", zap.Error(err))
		return c.JSON(http.StatusBadRequest, &ProcessResponse{
			Success:   false,
			Error:     "请求格式错误: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	// 验证请求
	if req.QueueName == "" || req.MessageData == nil {
		return c.JSON(http.StatusBadRequest, &ProcessResponse{
			Success:   false,
			Error:     "请求参数无效：queueName和messageData都是必需的",
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	messageID := uuid.NewString()
	s.markProcessing(req.QueueName, 1)
	defer s.markProcessing(req.QueueName, -1)

	// 按队列和消息类型同步分发
	s.dispatch(c.Request().Context(), req, messageID)

	return c.JSON(http.StatusOK, &ProcessResponse{
		Success:   true,
		MessageID: messageID,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// dispatch 按(队列, 消息类型)分发消息
func (s *Server) dispatch(ctx context.Context, req *ProcessRequest, messageID string) {
	switch {
	case req.QueueName == QueueNotification && req.MessageData.Type == TypeChatNotification:
		var data ChatNotificationData
		if err := json.Unmarshal(req.MessageData.Data, &data); err != nil {
			s.logger.Warn("解析聊天通知数据失败",
				zap.String("message_id", messageID),
				zap.Error(err))
			return
		}
		// 消息已被接受，转发失败只记录，不影响处理请求的响应
		if err := s.forwarder.ForwardChatNotification(ctx, &data); err != nil {
			s.logger.Error("转发聊天通知失败",
				zap.String("message_id", messageID),
				zap.Error(err))
		}

	case req.QueueName == QueueChatTask && req.MessageData.Type == TaskMessageAnalytics:
		s.tasks.runMessageAnalytics(req.MessageData.Data)

	case req.QueueName == QueueChatTask && req.MessageData.Type == TaskContentModeration:
		s.tasks.runContentModeration(req.MessageData.Data)

	default:
		// 未知类型按前向兼容处理：记录并丢弃，不算错误
		s.logger.Warn("忽略未知的队列消息类型",
			zap.String("queue", req.QueueName),
			zap.String("type", req.MessageData.Type),
			zap.String("message_id", messageID))
	}
}

// statsHandler 队列统计处理函数
func (s *Server) statsHandler(c echo.Context) error {
	s.mu.Lock()
	queues := make(map[string]QueueStats, len(s.stats))
	for name, stat := range s.stats {
		queues[name] = *stat
	}
	s.mu.Unlock()

	return c.JSON(http.StatusOK, &StatsResponse{Queues: queues})
}

// markProcessing 调整队列的处理中计数
func (s *Server) markProcessing(queueName string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stat, ok := s.stats[queueName]
	if !ok {
		stat = &QueueStats{}
		s.stats[queueName] = stat
	}
	stat.Processing += delta
	if stat.Processing < 0 {
		stat.Processing = 0
	}
}
