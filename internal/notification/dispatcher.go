package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
)

// Dispatcher 通知分发器，把通知内容交给投递后端
type Dispatcher struct {
	sender Sender
	logger config.Logger
}

// NewDispatcher 创建通知分发器
func NewDispatcher(sender Sender, logger config.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger,
	}
}

// Send 投递单条通知
func (d *Dispatcher) Send(ctx context.Context, payload *Payload, target *Target) *DeliveryResult {
	result := d.sender.Send(ctx, payload, target)
	if !result.Success {
		d.logger.Warn("通知投递失败",
			zap.String("title", payload.Title),
			zap.String("error", result.Error))
	}
	return result
}

// SendBulk 按顺序投递一批目标并汇总结果
// 不做并发，保持后端负载可预期；单个目标失败后继续处理剩余目标，
// 只要有一条投递成功，汇总结果即视为成功
func (d *Dispatcher) SendBulk(ctx context.Context, payload *Payload, targets []*Target) *DeliveryResult {
	aggregate := &DeliveryResult{}

	for _, target := range targets {
		result := d.Send(ctx, payload, target)
		if result.Success {
			aggregate.DeliveredCount++
		} else {
			aggregate.FailedCount++
		}
	}

	aggregate.Success = aggregate.DeliveredCount > 0
	d.logger.Info("批量投递完成",
		zap.String("title", payload.Title),
		zap.Int("delivered", aggregate.DeliveredCount),
		zap.Int("failed", aggregate.FailedCount))

	return aggregate
}
