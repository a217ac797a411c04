package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
	"github.com/hewenyu/mesh-gateway/internal/notification"
)

// Forwarder 把队列里的聊天通知转发给通知服务
type Forwarder struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  config.Logger
}

// NewForwarder 创建通知转发客户端
func NewForwarder(baseURL string, timeout time.Duration, logger config.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Forwarder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// ChatNotificationData 聊天通知消息携带的数据
type ChatNotificationData struct {
	RecipientID    string `json:"recipient_id"`    // 接收用户
	SenderName     string `json:"sender_name"`     // 发送者昵称
	Preview        string `json:"preview"`         // 消息预览
	ConversationID string `json:"conversation_id"` // 会话ID
}

// ForwardChatNotification 把聊天通知提交到通知服务的投递端点
// 调用带超时限制；任何失败都返回error由调用方记录，不会重试
func (f *Forwarder) ForwardChatNotification(ctx context.Context, data *ChatNotificationData) error {
	payload := notification.NewMessage(data.SenderName, data.Preview, data.ConversationID)
	target := notification.UserTarget(data.RecipientID)

	body, err := json.Marshal(&notification.SendRequest{
		Payload: payload,
		Target:  target,
	})
	if err != nil {
		return fmt.Errorf("序列化通知请求失败: %w", err)
	}

	forwardCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	url := f.baseURL + "/api/notifications/send"
	req, err := http.NewRequestWithContext(forwardCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构建通知请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("转发通知失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("通知服务返回 %d", resp.StatusCode)
	}

	f.logger.Debug("聊天通知已转发",
		zap.String("recipient", data.RecipientID),
		zap.String("conversation", data.ConversationID))
	return nil
}
