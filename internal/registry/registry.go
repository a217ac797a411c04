package registry

import (
	"fmt"
	"sort"
	"strings"
)

// ConnectionType 表示请求转发使用的连接类型
type ConnectionType string

const (
	// ConnectionHTTP 普通HTTP请求
	ConnectionHTTP ConnectionType = "http"
	// ConnectionWebSocket WebSocket长连接
	ConnectionWebSocket ConnectionType = "websocket"
)

// ServiceType 表示下游服务的部署形态
type ServiceType string

const (
	// TypeMicroservice 独立微服务
	TypeMicroservice ServiceType = "microservice"
	// TypeMonolith 单体应用
	TypeMonolith ServiceType = "monolith"
)

// ServiceDescriptor 定义下游服务的静态描述
type ServiceDescriptor struct {
	Name         string      `json:"name"`         // 服务名称
	Type         ServiceType `json:"type"`         // 服务类型
	BaseURL      string      `json:"url"`          // 服务基础地址
	Port         int         `json:"port"`         // 服务端口
	Capabilities []string    `json:"capabilities"` // 服务能力列表
}

// RouteRule 定义路径前缀到服务的路由规则
type RouteRule struct {
	Pattern  string         `json:"pattern"`  // 路径模式，如 /api/email/*
	Service  string         `json:"service"`  // 目标服务名称
	Priority int            `json:"priority"` // 优先级，数字越小越优先
	ConnType ConnectionType `json:"-"`        // 连接类型
}

// RouteResolution 表示一次路由解析的结果，随请求上下文存活
type RouteResolution struct {
	TargetService string         `json:"target_service"` // 目标服务名称
	TargetPort    int            `json:"target_port"`    // 目标服务端口
	ConnType      ConnectionType `json:"connection_type"`
}

// Registry 静态服务注册表，进程启动时构建，之后只读
type Registry struct {
	services map[string]*ServiceDescriptor
	rules    []RouteRule
	fallback string
}

// New 根据服务描述和路由规则构建注册表
// 规则按优先级升序排序；最后一条规则必须是兜底的 /* 模式，
// 保证任何路径都能解析到一个服务
func New(services []*ServiceDescriptor, rules []RouteRule) (*Registry, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("服务列表不能为空")
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("路由规则不能为空")
	}

	serviceMap := make(map[string]*ServiceDescriptor, len(services))
	for _, svc := range services {
		if svc.Name == "" {
			return nil, fmt.Errorf("服务名称不能为空")
		}
		serviceMap[svc.Name] = svc
	}

	sorted := make([]RouteRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	last := sorted[len(sorted)-1]
	if last.Pattern != "/*" {
		return nil, fmt.Errorf("最后一条路由规则必须是兜底的 /* 模式，实际为 %s", last.Pattern)
	}

	for _, rule := range sorted {
		if _, ok := serviceMap[rule.Service]; !ok {
			return nil, fmt.Errorf("路由规则 %s 引用了未注册的服务 %s", rule.Pattern, rule.Service)
		}
	}

	return &Registry{
		services: serviceMap,
		rules:    sorted,
		fallback: last.Service,
	}, nil
}

// Resolve 根据请求路径解析目标服务
// 按优先级顺序匹配第一条命中的规则；由于存在兜底规则，解析永远成功
func (r *Registry) Resolve(path string) RouteResolution {
	for _, rule := range r.rules {
		if matchPrefix(rule.Pattern, path) {
			svc := r.services[rule.Service]
			return RouteResolution{
				TargetService: svc.Name,
				TargetPort:    svc.Port,
				ConnType:      rule.ConnType,
			}
		}
	}

	// 不可达：兜底规则保证总有命中
	svc := r.services[r.fallback]
	return RouteResolution{
		TargetService: svc.Name,
		TargetPort:    svc.Port,
		ConnType:      ConnectionHTTP,
	}
}

// Service 根据名称查找服务描述，不存在时返回nil
func (r *Registry) Service(name string) *ServiceDescriptor {
	return r.services[name]
}

// Services 返回所有服务描述，顺序按名称稳定排列
func (r *Registry) Services() []*ServiceDescriptor {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]*ServiceDescriptor, 0, len(names))
	for _, name := range names {
		result = append(result, r.services[name])
	}
	return result
}

// Rules 返回按优先级排序的路由规则
func (r *Registry) Rules() []RouteRule {
	result := make([]RouteRule, len(r.rules))
	copy(result, r.rules)
	return result
}

// RouteTable 返回路径前缀到 service:port 的映射，用于健康检查端点展示
func (r *Registry) RouteTable() map[string]string {
	table := make(map[string]string, len(r.rules))
	for _, rule := range r.rules {
		svc := r.services[rule.Service]
		table[rule.Pattern] = fmt.Sprintf("%s:%d", svc.Name, svc.Port)
	}
	return table
}

// matchPrefix 判断路径是否命中模式
// 模式形如 /api/email/* ，表示匹配该前缀下的所有路径（含前缀本身）
func matchPrefix(pattern, path string) bool {
	if pattern == "/*" {
		return true
	}
	prefix := strings.TrimSuffix(pattern, "/*")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
