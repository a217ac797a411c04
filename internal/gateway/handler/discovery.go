package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hewenyu/mesh-gateway/internal/registry"
)

// GatewayInfo 网关自描述
type GatewayInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
}

// ServiceEntry 服务目录条目
type ServiceEntry struct {
	Name         string               `json:"name"`
	Type         registry.ServiceType `json:"type"`
	URL          string               `json:"url"`
	Routes       []string             `json:"routes"`
	Capabilities []string             `json:"capabilities"`
}

// RoutingRules 路由规则表
type RoutingRules struct {
	PriorityOrder []registry.RouteRule `json:"priority_order"`
}

// DiscoveryResponse 服务目录响应
type DiscoveryResponse struct {
	Gateway      GatewayInfo    `json:"gateway"`
	Services     []ServiceEntry `json:"services"`
	RoutingRules RoutingRules   `json:"routing_rules"`
	Timestamp    string         `json:"timestamp"`
}

// DiscoveryHandler 服务目录处理器
type DiscoveryHandler struct {
	registry *registry.Registry
}

// NewDiscoveryHandler 创建服务目录处理器
func NewDiscoveryHandler(reg *registry.Registry) *DiscoveryHandler {
	return &DiscoveryHandler{registry: reg}
}

// GetDiscovery 服务目录处理函数
// 输出静态服务目录和按优先级排序的路由规则，规则以兜底的 /* 结尾
func (h *DiscoveryHandler) GetDiscovery(c echo.Context) error {
	services := h.registry.Services()
	rules := h.registry.Rules()

	// 按服务归集其命中的路由前缀
	routesByService := make(map[string][]string, len(services))
	for _, rule := range rules {
		routesByService[rule.Service] = append(routesByService[rule.Service], rule.Pattern)
	}

	entries := make([]ServiceEntry, 0, len(services))
	for _, svc := range services {
		entries = append(entries, ServiceEntry{
			Name:         svc.Name,
			Type:         svc.Type,
			URL:          svc.BaseURL,
			Routes:       routesByService[svc.Name],
			Capabilities: svc.Capabilities,
		})
	}

	return c.JSON(http.StatusOK, &DiscoveryResponse{
		Gateway: GatewayInfo{
			Name:    GatewayName,
			Version: Version,
			Type:    "gateway",
		},
		Services:     entries,
		RoutingRules: RoutingRules{PriorityOrder: rules},
		Timestamp:    time.Now().Format(time.RFC3339),
	})
}
