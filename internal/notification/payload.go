package notification

import "fmt"

// Payload 一条推送通知的内容，构建后不再修改
type Payload struct {
	Title       string            `json:"title"`                  // 通知标题
	Body        string            `json:"body"`                   // 通知正文
	Data        map[string]string `json:"data,omitempty"`         // 附加数据
	ImageURL    string            `json:"image_url,omitempty"`    // 图片地址
	ClickAction string            `json:"click_action,omitempty"` // 点击跳转
	Badge       int               `json:"badge,omitempty"`        // 角标数字
}

// Target 通知的投递目标，四种寻址方式有且只有一种被设置
type Target struct {
	UserID      string `json:"user_id,omitempty"`      // 按用户投递
	DeviceToken string `json:"device_token,omitempty"` // 按设备投递
	Topic       string `json:"topic,omitempty"`        // 按主题广播
	Condition   string `json:"condition,omitempty"`    // 按条件表达式投递
}

// Validate 校验目标的寻址方式恰好为一种
func (t *Target) Validate() error {
	count := 0
	if t.UserID != "" {
		count++
	}
	if t.DeviceToken != "" {
		count++
	}
	if t.Topic != "" {
		count++
	}
	if t.Condition != "" {
		count++
	}

	if count == 0 {
		return fmt.Errorf("通知目标必须指定一种寻址方式")
	}
	if count > 1 {
		return fmt.Errorf("通知目标只能指定一种寻址方式，实际指定了%d种", count)
	}
	return nil
}

// UserTarget 构造按用户投递的目标
func UserTarget(userID string) *Target {
	return &Target{UserID: userID}
}

// DeviceTarget 构造按设备投递的目标
func DeviceTarget(token string) *Target {
	return &Target{DeviceToken: token}
}

// TopicTarget 构造按主题广播的目标
func TopicTarget(topic string) *Target {
	return &Target{Topic: topic}
}

// ConditionTarget 构造按条件表达式投递的目标
func ConditionTarget(condition string) *Target {
	return &Target{Condition: condition}
}

// DeliveryResult 单次或批量投递的结果
type DeliveryResult struct {
	Success        bool   `json:"success"`                   // 是否成功
	MessageID      string `json:"message_id,omitempty"`      // 投递消息ID
	Error          string `json:"error,omitempty"`           // 失败原因
	DeliveredCount int    `json:"delivered_count,omitempty"` // 批量投递成功数
	FailedCount    int    `json:"failed_count,omitempty"`    // 批量投递失败数
}
