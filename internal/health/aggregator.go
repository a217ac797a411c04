package health

import (
	"context"
	"sync"

	"github.com/hewenyu/mesh-gateway/internal/registry"
)

// OverallStatus 表示系统整体健康状态
type OverallStatus string

const (
	// OverallHealthy 所有服务均健康
	OverallHealthy OverallStatus = "healthy"
	// OverallDegraded 至少一个服务不健康或不可达
	OverallDegraded OverallStatus = "degraded"
)

// Summary 健康报告的计数汇总
type Summary struct {
	Total       int `json:"total"`
	Healthy     int `json:"healthy"`
	Unhealthy   int `json:"unhealthy"`
	Unreachable int `json:"unreachable"`
}

// Aggregate 一次完整的健康汇总快照
type Aggregate struct {
	OverallStatus OverallStatus `json:"status"`
	Reports       []*Report     `json:"services"`
	Summary       Summary       `json:"summary"`
}

// Aggregator 并发探测所有注册服务并汇总结果
type Aggregator struct {
	prober   *Prober
	services []*registry.ServiceDescriptor
}

// NewAggregator 创建健康汇总器
func NewAggregator(prober *Prober, services []*registry.ServiceDescriptor) *Aggregator {
	return &Aggregator{
		prober:   prober,
		services: services,
	}
}

// Aggregate 并发探测所有服务，等待全部完成后汇总
// 必须等所有探测结束（成功或失败），单个快速响应不能掩盖慢的不可达服务；
// 只要有一个服务不健康，整体状态即为 degraded
func (a *Aggregator) Aggregate(ctx context.Context) *Aggregate {
	reports := make([]*Report, len(a.services))

	var wg sync.WaitGroup
	for i, svc := range a.services {
		wg.Add(1)
		go func(idx int, s *registry.ServiceDescriptor) {
			defer wg.Done()
			reports[idx] = a.prober.Probe(ctx, s)
		}(i, svc)
	}
	wg.Wait()

	summary := Summary{Total: len(reports)}
	for _, report := range reports {
		switch report.Status {
		case StatusHealthy:
			summary.Healthy++
		case StatusUnhealthy:
			summary.Unhealthy++
		case StatusUnreachable:
			summary.Unreachable++
		}
	}

	overall := OverallHealthy
	if summary.Healthy != summary.Total {
		overall = OverallDegraded
	}

	return &Aggregate{
		OverallStatus: overall,
		Reports:       reports,
		Summary:       summary,
	}
}
