package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
	"github.com/hewenyu/mesh-gateway/internal/registry"
)

// Status 表示单个服务的健康状态
type Status string

const (
	// StatusHealthy 服务健康
	StatusHealthy Status = "healthy"
	// StatusUnhealthy 服务返回了非2xx响应
	StatusUnhealthy Status = "unhealthy"
	// StatusUnreachable 服务无法连接或超时
	StatusUnreachable Status = "unreachable"
)

// Report 单个服务的健康快照，每次探测都重新生成，不保留历史
type Report struct {
	Name           string                 `json:"name"`                       // 服务名称
	Status         Status                 `json:"status"`                     // 健康状态
	ResponseTimeMs int64                  `json:"response_time_ms,omitempty"` // 响应耗时（毫秒）
	LastCheckedAt  time.Time              `json:"last_checked_at"`            // 探测时间
	Detail         map[string]interface{} `json:"detail,omitempty"`           // 下游自报的健康详情，原样透传
	Error          string                 `json:"error,omitempty"`            // 失败原因
}

// Prober 对下游服务发起带超时的健康探测
type Prober struct {
	client  *http.Client
	timeout time.Duration
	logger  config.Logger
}

// NewProber 创建健康探测器
func NewProber(timeout time.Duration, logger config.Logger) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// Probe 探测单个服务的 /health 端点
// 任何网络错误或超时都被吸收为 unreachable 报告，不会向调用方抛出
func (p *Prober) Probe(ctx context.Context, svc *registry.ServiceDescriptor) *Report {
	report := &Report{
		Name:          svc.Name,
		LastCheckedAt: time.Now(),
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/health", svc.BaseURL)
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		report.Status = StatusUnreachable
		report.Error = err.Error()
		return report
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		// 超时或连接失败
		p.logger.Warn("健康探测失败",
			zap.String("service", svc.Name),
			zap.Error(err))
		report.Status = StatusUnreachable
		report.Error = err.Error()
		return report
	}
	defer resp.Body.Close()

	report.ResponseTimeMs = elapsed.Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		report.Status = StatusUnhealthy
		report.Error = fmt.Sprintf("非2xx状态码: %d", resp.StatusCode)
		return report
	}

	report.Status = StatusHealthy

	// 下游健康详情结构由各服务自行决定，这里只做透传
	body, err := io.ReadAll(resp.Body)
	if err == nil && len(body) > 0 {
		var detail map[string]interface{}
		if err := json.Unmarshal(body, &detail); err == nil {
			report.Detail = detail
		}
	}

	return report
}
