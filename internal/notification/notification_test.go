package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// MockLogger 实现config.Logger接口，用于测试
type MockLogger struct{}

func (l *MockLogger) Debug(msg string, fields ...zapcore.Field) {}
func (l *MockLogger) Info(msg string, fields ...zapcore.Field)  {}
func (l *MockLogger) Warn(msg string, fields ...zapcore.Field)  {}
func (l *MockLogger) Error(msg string, fields ...zapcore.Field) {}
func (l *MockLogger) Fatal(msg string, fields ...zapcore.Field) {}

// scriptedSender 按预设脚本返回投递结果，记录实际收到的目标顺序
type scriptedSender struct {
	results map[string]bool // 目标描述 → 是否成功
	calls   []string
}

func (s *scriptedSender) Send(ctx context.Context, payload *Payload, target *Target) *DeliveryResult {
	key := describeTarget(target)
	s.calls = append(s.calls, key)
	if s.results[key] {
		return &DeliveryResult{Success: true, MessageID: "msg-" + key}
	}
	return &DeliveryResult{Success: false, Error: "投递被拒绝"}
}

func TestTargetValidate(t *testing.T) {
	// 恰好一种寻址方式：合法
	assert.NoError(t, UserTarget("u1").Validate(), "单一用户目标应合法")
	assert.NoError(t, DeviceTarget("tok").Validate(), "单一设备目标应合法")
	assert.NoError(t, TopicTarget("news").Validate(), "单一主题目标应合法")
	assert.NoError(t, ConditionTarget("'a' in topics").Validate(), "单一条件目标应合法")

	// 没有寻址方式：非法
	assert.Error(t, (&Target{}).Validate(), "空目标应非法")

	// 多种寻址方式：非法
	multi := &Target{UserID: "u1", Topic: "news"}
	assert.Error(t, multi.Validate(), "多重寻址的目标应非法")
}

func TestTemplates(t *testing.T) {
	msg := NewMessage("Alice", "你好", "conv-1")
	assert.Contains(t, msg.Title, "Alice", "新消息标题应包含发送者")
	assert.Equal(t, "chat-message", msg.Data["type"], "事件类型应为chat-message")
	assert.Equal(t, "/chat/conv-1", msg.ClickAction, "点击应跳转到会话")

	order := OrderConfirmation("ord-9", "设计模板包")
	assert.Equal(t, "order-confirmation", order.Data["type"], "事件类型应为order-confirmation")
	assert.Contains(t, order.Body, "ord-9", "正文应包含订单号")

	alert := UnusualLogin("上海", "Chrome on Windows")
	assert.Equal(t, "security-alert", alert.Data["type"], "事件类型应为security-alert")

	maintenance := MaintenanceAlert("今晚 02:00-04:00")
	assert.Equal(t, "maintenance-alert", maintenance.Data["type"], "事件类型应为maintenance-alert")
}

func TestSimulatedSenderAlwaysSucceeds(t *testing.T) {
	sender := NewSimulatedSender(&MockLogger{})

	start := time.Now()
	result := sender.Send(context.Background(), PasswordChanged(), UserTarget("u1"))
	elapsed := time.Since(start)

	require.NotNil(t, result, "结果不应为nil")
	assert.True(t, result.Success, "模拟投递应总是成功")
	assert.True(t, strings.HasPrefix(result.MessageID, "sim-"), "模拟消息ID应以sim-开头")
	// 模拟延迟下限为100ms
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "模拟投递应引入人工延迟")
}

func TestSimulatedSenderRejectsInvalidTarget(t *testing.T) {
	sender := NewSimulatedSender(&MockLogger{})

	result := sender.Send(context.Background(), PasswordChanged(), &Target{})
	assert.False(t, result.Success, "非法目标应投递失败")
	assert.NotEmpty(t, result.Error, "失败结果应带错误信息")
}

func TestDispatcherSend(t *testing.T) {
	sender := &scriptedSender{results: map[string]bool{"user:u1": true}}
	dispatcher := NewDispatcher(sender, &MockLogger{})

	result := dispatcher.Send(context.Background(), PasswordChanged(), UserTarget("u1"))
	assert.True(t, result.Success, "投递应成功")
	assert.Equal(t, "msg-user:u1", result.MessageID, "应透传后端消息ID")
}

func TestSendBulkContinuesPastFailure(t *testing.T) {
	// A成功、B失败、C成功：失败后必须继续处理C
	sender := &scriptedSender{results: map[string]bool{
		"user:A": true,
		"user:B": false,
		"user:C": true,
	}}
	dispatcher := NewDispatcher(sender, &MockLogger{})

	targets := []*Target{UserTarget("A"), UserTarget("B"), UserTarget("C")}
	result := dispatcher.SendBulk(context.Background(), MaintenanceAlert("02:00"), targets)

	assert.Equal(t, 2, result.DeliveredCount, "成功数应为2")
	assert.Equal(t, 1, result.FailedCount, "失败数应为1")
	assert.True(t, result.Success, "至少一条成功时汇总应为成功")
	assert.Equal(t, []string{"user:A", "user:B", "user:C"}, sender.calls, "失败后应继续处理剩余目标")
}

func TestSendBulkAllFailed(t *testing.T) {
	sender := &scriptedSender{results: map[string]bool{}}
	dispatcher := NewDispatcher(sender, &MockLogger{})

	targets := []*Target{UserTarget("A"), UserTarget("B")}
	result := dispatcher.SendBulk(context.Background(), MaintenanceAlert("02:00"), targets)

	assert.False(t, result.Success, "全部失败时汇总应为失败")
	assert.Equal(t, 0, result.DeliveredCount, "成功数应为0")
	assert.Equal(t, 2, result.FailedCount, "失败数应为2")
}
