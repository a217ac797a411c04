package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/hewenyu/mesh-gateway/internal/config"
)

// MockLogger 实现config.Logger接口，用于测试
type MockLogger struct{}

func (l *MockLogger) Debug(msg string, fields ...zapcore.Field) {}
func (l *MockLogger) Info(msg string, fields ...zapcore.Field)  {}
func (l *MockLogger) Warn(msg string, fields ...zapcore.Field)  {}
func (l *MockLogger) Error(msg string, fields ...zapcore.Field) {}
func (l *MockLogger) Fatal(msg string, fields ...zapcore.Field) {}

// newTestServer 构造一个指向给定通知服务地址的Worker
func newTestServer(t *testing.T, notificationURL string) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Worker.ListenAddress = "127.0.0.1"
	cfg.Worker.Port = 0 // 测试时让系统分配端口
	cfg.Worker.NotificationURL = notificationURL
	cfg.Worker.ForwardTimeout = 1 * time.Second

	logger := &MockLogger{}
	forwarder := NewForwarder(cfg.Worker.NotificationURL, cfg.Worker.ForwardTimeout, logger)
	return NewServer(cfg, forwarder, logger)
}

// doProcess 直接调用processHandler并返回响应记录
func doProcess(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/queue/process", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, server.processHandler(e.NewContext(req, rec)), "处理函数不应返回error")
	return rec
}

func TestProcessForwardsChatNotification(t *testing.T) {
	received := make(chan string, 1)
	notifyd := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.URL.Path
		w.Write([]byte(`{"success":true,"message_id":"m1"}`))
	}))
	defer notifyd.Close()

	server := newTestServer(t, notifyd.URL)
	rec := doProcess(t, server, `{
		"queueName": "notification-queue",
		"messageData": {
			"type": "chat-notification",
			"data": {"recipient_id":"u1","sender_name":"Alice","preview":"hi","conversation_id":"c1"}
		}
	}`)

	assert.Equal(t, http.StatusOK, rec.Code, "有效消息应返回200")
	assert.Contains(t, rec.Body.String(), `"success":true`, "响应应标记成功")
	assert.Contains(t, rec.Body.String(), "messageId", "响应应携带消息ID")

	select {
	case path := <-received:
		assert.Equal(t, "/api/notifications/send", path, "应转发到通知投递端点")
	case <-time.After(time.Second):
		t.Fatal("通知服务未收到转发请求")
	}
}

func TestProcessSucceedsWhenForwardFails(t *testing.T) {
	// 通知服务不可达：转发失败被吞掉，处理请求仍然成功
	server := newTestServer(t, "http://127.0.0.1:1")
	rec := doProcess(t, server, `{
		"queueName": "notification-queue",
		"messageData": {
			"type": "chat-notification",
			"data": {"recipient_id":"u1","sender_name":"Alice","preview":"hi","conversation_id":"c1"}
		}
	}`)

	assert.Equal(t, http.StatusOK, rec.Code, "转发失败不应影响处理请求的响应")
	assert.Contains(t, rec.Body.String(), `"success":true`, "消息已被接受，响应应标记成功")
}

func TestProcessRejectsMissingFields(t *testing.T) {
	server := newTestServer(t, "http://127.0.0.1:1")

	// 缺少queueName
	rec := doProcess(t, server, `{"messageData":{"type":"chat-notification","data":{}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "缺少queueName应返回400")
	assert.Contains(t, rec.Body.String(), "queueName", "错误信息应说明缺少的字段")

	// 缺少messageData
	rec = doProcess(t, server, `{"queueName":"notification-queue"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "缺少messageData应返回400")
}

func TestProcessChatTasks(t *testing.T) {
	server := newTestServer(t, "http://127.0.0.1:1")

	// 消息分析任务
	rec := doProcess(t, server, `{
		"queueName": "chat-task-queue",
		"messageData": {"type":"message-analytics","data":{"message_id":"m1","content":"hello world"}}
	}`)
	assert.Equal(t, http.StatusOK, rec.Code, "分析任务应处理成功")

	// 内容审查任务
	rec = doProcess(t, server, `{
		"queueName": "chat-task-queue",
		"messageData": {"type":"content-moderation","data":{"message_id":"m2","content":"free spam offer"}}
	}`)
	assert.Equal(t, http.StatusOK, rec.Code, "审查任务应处理成功")
}

func TestProcessIgnoresUnknownType(t *testing.T) {
	server := newTestServer(t, "http://127.0.0.1:1")

	// 未知类型：接受、记录、丢弃，响应仍然成功
	rec := doProcess(t, server, `{
		"queueName": "chat-task-queue",
		"messageData": {"type":"future-task","data":{}}
	}`)
	assert.Equal(t, http.StatusOK, rec.Code, "未知消息类型不应报错")
	assert.Contains(t, rec.Body.String(), `"success":true`, "未知类型仍应标记成功")
}

func TestQueueStats(t *testing.T) {
	server := newTestServer(t, "http://127.0.0.1:1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/queue/stats", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, server.statsHandler(e.NewContext(req, rec)), "统计处理函数不应返回error")

	assert.Equal(t, http.StatusOK, rec.Code, "统计端点应返回200")
	body := rec.Body.String()
	assert.Contains(t, body, QueueNotification, "统计应包含通知队列")
	assert.Contains(t, body, QueueChatTask, "统计应包含聊天任务队列")
	assert.Contains(t, body, "pending", "统计应包含pending计数")
	assert.Contains(t, body, "processing", "统计应包含processing计数")
}

func TestLifecycle(t *testing.T) {
	server := newTestServer(t, "http://127.0.0.1:1")
	assert.Equal(t, StateIdle, server.State(), "初始状态应为idle")

	require.NoError(t, server.Start(), "启动应成功")
	assert.Equal(t, StateRunning, server.State(), "启动后状态应为running")

	// 重复启动应报错
	assert.Error(t, server.Start(), "running状态下再次启动应报错")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx), "关闭应成功")
	assert.Equal(t, StateStopped, server.State(), "关闭后状态应为stopped")

	// 幂等：第二次关闭是空操作
	assert.NoError(t, server.Shutdown(ctx), "重复关闭不应报错")
	assert.Equal(t, StateStopped, server.State(), "重复关闭后状态仍为stopped")
}
