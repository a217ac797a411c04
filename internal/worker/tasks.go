package worker

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
)

// 聊天任务类型
const (
	TaskMessageAnalytics  = "message-analytics"
	TaskContentModeration = "content-moderation"
)

// chatTaskData 聊天任务消息携带的数据
type chatTaskData struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

// moderationKeywords 内容审查的关键词表
var moderationKeywords = []string{
	"spam", "scam", "免费领取", "加微信",
}

// TaskRunner 执行聊天侧的后台任务
type TaskRunner struct {
	logger config.Logger
}

// NewTaskRunner 创建任务执行器
func NewTaskRunner(logger config.Logger) *TaskRunner {
	return &TaskRunner{logger: logger}
}

// runMessageAnalytics 统计消息的基础指标
func (r *TaskRunner) runMessageAnalytics(raw json.RawMessage) {
	var data chatTaskData
	if err := json.Unmarshal(raw, &data); err != nil {
		r.logger.Warn("解析分析任务数据失败", zap.Error(err))
		return
	}

	words := len(strings.Fields(data.Content))
	chars := utf8.RuneCountInString(data.Content)

	r.logger.Info("消息分析完成",
		zap.String("message_id", data.MessageID),
		zap.Int("word_count", words),
		zap.Int("char_count", chars))
}

// runContentModeration 对消息内容做关键词筛查
func (r *TaskRunner) runContentModeration(raw json.RawMessage) {
	var data chatTaskData
	if err := json.Unmarshal(raw, &data); err != nil {
		r.logger.Warn("解析审查任务数据失败", zap.Error(err))
		return
	}

	content := strings.ToLower(data.Content)
	for _, keyword := range moderationKeywords {
		if strings.Contains(content, strings.ToLower(keyword)) {
			r.logger.Warn("消息命中审查关键词",
				zap.String("message_id", data.MessageID),
				zap.String("keyword", keyword))
			return
		}
	}

	r.logger.Debug("消息通过内容审查",
		zap.String("message_id", data.MessageID))
}
