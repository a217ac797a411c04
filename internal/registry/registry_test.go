package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg, err := New(DefaultServices(), DefaultRules())
	require.NoError(t, err, "默认注册表构建应成功")
	require.NotNil(t, reg, "注册表不应为nil")

	assert.Len(t, reg.Services(), 5, "应注册5个服务")
	assert.Len(t, reg.Rules(), 7, "应有7条路由规则")
}

func TestNewRegistryValidation(t *testing.T) {
	services := DefaultServices()

	// 空服务列表
	_, err := New(nil, DefaultRules())
	assert.Error(t, err, "空服务列表应报错")

	// 空规则列表
	_, err = New(services, nil)
	assert.Error(t, err, "空规则列表应报错")

	// 缺少兜底规则
	_, err = New(services, []RouteRule{
		{Pattern: "/api/*", Service: "main-app", Priority: 1},
	})
	assert.Error(t, err, "缺少兜底 /* 规则应报错")

	// 引用未注册的服务
	_, err = New(services, []RouteRule{
		{Pattern: "/api/*", Service: "ghost-service", Priority: 1},
		{Pattern: "/*", Service: "main-app", Priority: 2},
	})
	assert.Error(t, err, "引用未注册服务应报错")
}

func TestResolve(t *testing.T) {
	reg := Default()

	cases := []struct {
		path     string
		service  string
		port     int
		connType ConnectionType
	}{
		// 具体前缀优先于 /api/* 通配
		{"/api/email/send", "email-service", 3001, ConnectionHTTP},
		{"/api/email", "email-service", 3001, ConnectionHTTP},
		{"/socket.io/connect", "chat-service", 3002, ConnectionWebSocket},
		{"/api/chat/messages", "chat-service", 3002, ConnectionHTTP},
		{"/api/notifications/send", "notification-service", 3003, ConnectionHTTP},
		{"/api/queue/process", "worker-service", 3004, ConnectionHTTP},
		// /api/* 通配
		{"/api/products", "main-app", 5000, ConnectionHTTP},
		{"/api/orders/123", "main-app", 5000, ConnectionHTTP},
		// 兜底规则
		{"/", "main-app", 5000, ConnectionHTTP},
		{"/about", "main-app", 5000, ConnectionHTTP},
		{"/totally/unknown/path", "main-app", 5000, ConnectionHTTP},
	}

	for _, tc := range cases {
		res := reg.Resolve(tc.path)
		assert.Equal(t, tc.service, res.TargetService, "路径 %s 应解析到 %s", tc.path, tc.service)
		assert.Equal(t, tc.port, res.TargetPort, "路径 %s 的端口应为 %d", tc.path, tc.port)
		assert.Equal(t, tc.connType, res.ConnType, "路径 %s 的连接类型应为 %s", tc.path, tc.connType)
	}
}

func TestResolveDeterministic(t *testing.T) {
	reg := Default()

	// 重复解析同一路径结果必须一致
	first := reg.Resolve("/api/chat/messages")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, reg.Resolve("/api/chat/messages"), "重复解析结果应一致")
	}
}

func TestResolveNeverFails(t *testing.T) {
	reg := Default()

	// 任意路径都能解析，不存在无法路由的状态
	paths := []string{"", "/", "/x", "/api", "/apifoo", "/socket.iox", "/.."}
	for _, path := range paths {
		res := reg.Resolve(path)
		assert.NotEmpty(t, res.TargetService, "路径 %q 必须解析到某个服务", path)
	}

	// 前缀相似但不属于该前缀的路径不应误匹配
	res := reg.Resolve("/api/emailx")
	assert.Equal(t, "main-app", res.TargetService, "/api/emailx 不应匹配 /api/email/*")
}

func TestRouteTable(t *testing.T) {
	reg := Default()

	table := reg.RouteTable()
	assert.Equal(t, "email-service:3001", table["/api/email/*"], "路由表应包含email服务")
	assert.Equal(t, "main-app:5000", table["/*"], "路由表应包含兜底规则")
}
