package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
)

// Sender 投递后端接口，模拟后端与真实推送后端实现同一契约
type Sender interface {
	Send(ctx context.Context, payload *Payload, target *Target) *DeliveryResult
}

// NewSender 根据运行模式选择投递后端，仅在构造时判断一次
func NewSender(cfg *config.Config, logger config.Logger) Sender {
	if cfg.Notification.Production {
		return NewPushSender(cfg.Notification.PushEndpoint, cfg.Notification.PushServerKey, logger)
	}
	return NewSimulatedSender(logger)
}

// SimulatedSender 模拟投递后端
// 用随机延迟模拟真实网络耗时，让完整调用链在本地可以跑通
type SimulatedSender struct {
	logger config.Logger
}

// NewSimulatedSender 创建模拟投递后端
func NewSimulatedSender(logger config.Logger) *SimulatedSender {
	return &SimulatedSender{logger: logger}
}

// Send 模拟一次投递，总是成功
func (s *SimulatedSender) Send(ctx context.Context, payload *Payload, target *Target) *DeliveryResult {
	if err := target.Validate(); err != nil {
		return &DeliveryResult{Success: false, Error: err.Error()}
	}

	// 模拟100-300ms的网络延迟
	delay := time.Duration(100+rand.Intn(200)) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return &DeliveryResult{Success: false, Error: ctx.Err().Error()}
	}

	messageID := "sim-" + uuid.NewString()
	s.logger.Info("模拟投递通知",
		zap.String("message_id", messageID),
		zap.String("title", payload.Title),
		zap.String("target", describeTarget(target)),
		zap.Duration("simulated_delay", delay))

	return &DeliveryResult{
		Success:   true,
		MessageID: messageID,
	}
}

// PushSender 真实推送投递后端
// 通过HTTP把FCM风格的消息体提交给推送服务端
type PushSender struct {
	endpoint  string
	serverKey string
	client    *http.Client
	logger    config.Logger
}

// NewPushSender 创建推送投递后端
func NewPushSender(endpoint, serverKey string, logger config.Logger) *PushSender {
	return &PushSender{
		endpoint:  endpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 5 * time.Second},
		logger:    logger,
	}
}

// pushMessage 推送服务端的消息结构
type pushMessage struct {
	To           string            `json:"to,omitempty"`
	Condition    string            `json:"condition,omitempty"`
	Notification map[string]string `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// pushResponse 推送服务端的响应结构
type pushResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// Send 提交一次真实推送
// 任何失败都被吸收为 DeliveryResult，不向调用方抛出
func (s *PushSender) Send(ctx context.Context, payload *Payload, target *Target) *DeliveryResult {
	if err := target.Validate(); err != nil {
		return &DeliveryResult{Success: false, Error: err.Error()}
	}

	msg := &pushMessage{
		Notification: map[string]string{
			"title": payload.Title,
			"body":  payload.Body,
		},
		Data: payload.Data,
	}
	if payload.ImageURL != "" {
		msg.Notification["image"] = payload.ImageURL
	}
	if payload.ClickAction != "" {
		msg.Notification["click_action"] = payload.ClickAction
	}

	// 寻址方式映射到推送服务端的地址字段
	switch {
	case target.DeviceToken != "":
		msg.To = target.DeviceToken
	case target.UserID != "":
		msg.To = "/users/" + target.UserID
	case target.Topic != "":
		msg.To = "/topics/" + target.Topic
	case target.Condition != "":
		msg.Condition = target.Condition
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return &DeliveryResult{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.serverKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("推送投递失败", zap.Error(err))
		return &DeliveryResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &DeliveryResult{Success: false, Error: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("推送服务端返回错误",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return &DeliveryResult{
			Success: false,
			Error:   fmt.Sprintf("推送服务端返回 %d", resp.StatusCode),
		}
	}

	var pushResp pushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return &DeliveryResult{Success: false, Error: err.Error()}
	}
	if pushResp.Error != "" {
		return &DeliveryResult{Success: false, Error: pushResp.Error}
	}

	return &DeliveryResult{
		Success:   true,
		MessageID: pushResp.MessageID,
	}
}

// describeTarget 生成目标的日志描述
func describeTarget(t *Target) string {
	switch {
	case t.UserID != "":
		return "user:" + t.UserID
	case t.DeviceToken != "":
		return "device:" + t.DeviceToken
	case t.Topic != "":
		return "topic:" + t.Topic
	case t.Condition != "":
		return "condition:" + t.Condition
	}
	return "unknown"
}
