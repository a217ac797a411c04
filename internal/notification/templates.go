package notification

import "fmt"

// 事件模板目录：每个模板把事件参数映射为通知内容，
// 交易和安全类事件按用户投递，系统公告类按主题广播

// NewMessage 新聊天消息通知
func NewMessage(senderName, preview, conversationID string) *Payload {
	return &Payload{
		Title: fmt.Sprintf("%s 发来新消息", senderName),
		Body:  preview,
		Data: map[string]string{
			"type":            "chat-message",
			"conversation_id": conversationID,
		},
		ClickAction: "/chat/" + conversationID,
		Badge:       1,
	}
}

// OrderConfirmation 订单确认通知
func OrderConfirmation(orderID, productName string) *Payload {
	return &Payload{
		Title: "订单已确认",
		Body:  fmt.Sprintf("您购买的 %s 已确认，订单号 %s", productName, orderID),
		Data: map[string]string{
			"type":     "order-confirmation",
			"order_id": orderID,
		},
		ClickAction: "/orders/" + orderID,
	}
}

// PaymentFailed 支付失败通知
func PaymentFailed(orderID, reason string) *Payload {
	return &Payload{
		Title: "支付失败",
		Body:  fmt.Sprintf("订单 %s 支付未成功：%s", orderID, reason),
		Data: map[string]string{
			"type":     "payment-failed",
			"order_id": orderID,
		},
		ClickAction: "/orders/" + orderID + "/payment",
	}
}

// UnusualLogin 异常登录安全提醒
func UnusualLogin(location, device string) *Payload {
	return &Payload{
		Title: "检测到异常登录",
		Body:  fmt.Sprintf("您的账号在 %s 通过 %s 登录，如非本人操作请立即修改密码", location, device),
		Data: map[string]string{
			"type":     "security-alert",
			"location": location,
			"device":   device,
		},
		ClickAction: "/settings/security",
	}
}

// PasswordChanged 密码修改确认通知
func PasswordChanged() *Payload {
	return &Payload{
		Title: "密码已修改",
		Body:  "您的账号密码刚刚被修改，如非本人操作请联系客服",
		Data: map[string]string{
			"type": "password-changed",
		},
		ClickAction: "/settings/security",
	}
}

// AccountVerified 卖家认证通过通知
func AccountVerified() *Payload {
	return &Payload{
		Title: "认证通过",
		Body:  "您的卖家资料已通过审核，现在可以发布商品了",
		Data: map[string]string{
			"type": "account-verified",
		},
		ClickAction: "/seller/dashboard",
	}
}

// MaintenanceAlert 系统维护公告，面向全体用户广播
func MaintenanceAlert(window string) *Payload {
	return &Payload{
		Title: "系统维护通知",
		Body:  fmt.Sprintf("平台将于 %s 进行维护，期间部分功能不可用", window),
		Data: map[string]string{
			"type": "maintenance-alert",
		},
	}
}

// PromotionalOffer 促销活动通知，面向订阅主题广播
func PromotionalOffer(title, description, imageURL string) *Payload {
	return &Payload{
		Title:    title,
		Body:     description,
		ImageURL: imageURL,
		Data: map[string]string{
			"type": "promotional-offer",
		},
		ClickAction: "/promotions",
	}
}
