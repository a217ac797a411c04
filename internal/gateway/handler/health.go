package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hewenyu/mesh-gateway/internal/health"
	"github.com/hewenyu/mesh-gateway/internal/registry"
)

// GatewayName 网关对外标识
const GatewayName = "mesh-gateway"

// Version 网关版本号
const Version = "1.0.0"

// 进程启动时间
var startTime = time.Now()

// UptimeInfo 运行时长信息
type UptimeInfo struct {
	Seconds int64  `json:"seconds"`
	Human   string `json:"human"`
}

// MemoryInfo 内存使用信息
type MemoryInfo struct {
	Used     uint64 `json:"used"`
	Total    uint64 `json:"total"`
	External uint64 `json:"external"`
	Unit     string `json:"unit"`
}

// GatewayHealthResponse 网关自身健康响应
type GatewayHealthResponse struct {
	Status    string            `json:"status"`
	Gateway   string            `json:"gateway"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Uptime    UptimeInfo        `json:"uptime"`
	Memory    MemoryInfo        `json:"memory"`
	Routes    map[string]string `json:"routes"`
}

// AggregateHealthResponse 全量服务健康汇总响应
type AggregateHealthResponse struct {
	Status    health.OverallStatus `json:"status"`
	Gateway   string               `json:"gateway"`
	Version   string               `json:"version"`
	Timestamp string               `json:"timestamp"`
	Services  []*health.Report     `json:"services"`
	Summary   health.Summary       `json:"summary"`
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	registry   *registry.Registry
	aggregator *health.Aggregator
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(reg *registry.Registry, aggregator *health.Aggregator) *HealthHandler {
	return &HealthHandler{
		registry:   reg,
		aggregator: aggregator,
	}
}

// GatewayHealth 网关自身健康检查处理函数
// 只报告本进程状态，不触达下游服务，因此除进程本身故障外总是200
func (h *HealthHandler) GatewayHealth(c echo.Context) error {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	uptime := time.Since(startTime)

	return c.JSON(http.StatusOK, &GatewayHealthResponse{
		Status:    "healthy",
		Gateway:   GatewayName,
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime: UptimeInfo{
			Seconds: int64(uptime.Seconds()),
			Human:   formatUptime(uptime),
		},
		Memory: MemoryInfo{
			Used:     memStats.HeapAlloc / 1024 / 1024,
			Total:    memStats.Sys / 1024 / 1024,
			External: (memStats.Sys - memStats.HeapSys) / 1024 / 1024,
			Unit:     "MB",
		},
		Routes: h.registry.RouteTable(),
	})
}

// ServicesHealth 全量服务健康汇总处理函数
// 并发探测所有注册服务，任一服务不健康时整体降级
func (h *HealthHandler) ServicesHealth(c echo.Context) error {
	aggregate := h.aggregator.Aggregate(c.Request().Context())

	return c.JSON(http.StatusOK, &AggregateHealthResponse{
		Status:    aggregate.OverallStatus,
		Gateway:   GatewayName,
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  aggregate.Reports,
		Summary:   aggregate.Summary,
	})
}

// formatUptime 将运行时长格式化为可读形式
func formatUptime(d time.Duration) string {
	days := int64(d.Hours()) / 24
	hours := int64(d.Hours()) % 24
	minutes := int64(d.Minutes()) % 60
	seconds := int64(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
