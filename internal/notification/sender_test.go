package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushSenderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "推送应使用POST")
		assert.Equal(t, "key=test-key", r.Header.Get("Authorization"), "应携带服务端密钥")

		var msg map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg), "消息体应为合法JSON")
		assert.Equal(t, "/topics/news", msg["to"], "主题目标应映射到/topics/前缀")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message_id":"push-123"}`))
	}))
	defer server.Close()

	sender := NewPushSender(server.URL, "test-key", &MockLogger{})
	result := sender.Send(context.Background(), PromotionalOffer("大促", "全场五折", ""), TopicTarget("news"))

	assert.True(t, result.Success, "推送应成功")
	assert.Equal(t, "push-123", result.MessageID, "应透传推送服务端的消息ID")
}

func TestPushSenderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewPushSender(server.URL, "bad-key", &MockLogger{})
	result := sender.Send(context.Background(), PasswordChanged(), UserTarget("u1"))

	// 失败被吸收为结果，不向调用方抛出
	assert.False(t, result.Success, "服务端错误应映射为失败结果")
	assert.NotEmpty(t, result.Error, "失败结果应带错误信息")
}

func TestPushSenderUnreachable(t *testing.T) {
	sender := NewPushSender("http://127.0.0.1:1", "key", &MockLogger{})
	result := sender.Send(context.Background(), PasswordChanged(), UserTarget("u1"))

	assert.False(t, result.Success, "连接失败应映射为失败结果")
	assert.NotEmpty(t, result.Error, "失败结果应带错误信息")
}

func TestPushSenderConditionTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg), "消息体应为合法JSON")
		assert.Equal(t, "'a' in topics", msg["condition"], "条件目标应映射到condition字段")
		assert.Nil(t, msg["to"], "条件目标不应设置to字段")
		w.Write([]byte(`{"message_id":"push-456"}`))
	}))
	defer server.Close()

	sender := NewPushSender(server.URL, "key", &MockLogger{})
	result := sender.Send(context.Background(), MaintenanceAlert("02:00"), ConditionTarget("'a' in topics"))

	assert.True(t, result.Success, "条件目标推送应成功")
}
