package registry

// DefaultServices 返回平台当前部署的服务清单
func DefaultServices() []*ServiceDescriptor {
	return []*ServiceDescriptor{
		{
			Name:    "main-app",
			Type:    TypeMonolith,
			BaseURL: "http://localhost:5000",
			Port:    5000,
			Capabilities: []string{
				"products", "orders", "sellers", "projects", "auth",
			},
		},
		{
			Name:    "email-service",
			Type:    TypeMicroservice,
			BaseURL: "http://localhost:3001",
			Port:    3001,
			Capabilities: []string{
				"transactional-email", "templates",
			},
		},
		{
			Name:    "chat-service",
			Type:    TypeMicroservice,
			BaseURL: "http://localhost:3002",
			Port:    3002,
			Capabilities: []string{
				"messaging", "presence", "websocket",
			},
		},
		{
			Name:    "notification-service",
			Type:    TypeMicroservice,
			BaseURL: "http://localhost:3003",
			Port:    3003,
			Capabilities: []string{
				"push-notification", "broadcast",
			},
		},
		{
			Name:    "worker-service",
			Type:    TypeMicroservice,
			BaseURL: "http://localhost:3004",
			Port:    3004,
			Capabilities: []string{
				"queue-processing", "chat-tasks",
			},
		},
	}
}

// DefaultRules 返回按优先级排列的路由规则
// 具体前缀优先于 /api/* ，兜底的 /* 必须排在最后
func DefaultRules() []RouteRule {
	return []RouteRule{
		{Pattern: "/api/email/*", Service: "email-service", Priority: 1, ConnType: ConnectionHTTP},
		{Pattern: "/socket.io/*", Service: "chat-service", Priority: 2, ConnType: ConnectionWebSocket},
		{Pattern: "/api/chat/*", Service: "chat-service", Priority: 3, ConnType: ConnectionHTTP},
		{Pattern: "/api/notifications/*", Service: "notification-service", Priority: 4, ConnType: ConnectionHTTP},
		{Pattern: "/api/queue/*", Service: "worker-service", Priority: 5, ConnType: ConnectionHTTP},
		{Pattern: "/api/*", Service: "main-app", Priority: 6, ConnType: ConnectionHTTP},
		{Pattern: "/*", Service: "main-app", Priority: 7, ConnType: ConnectionHTTP},
	}
}

// Default 构建默认注册表，仅在进程启动时调用一次
func Default() *Registry {
	reg, err := New(DefaultServices(), DefaultRules())
	if err != nil {
		// 默认表是编译期写死的，构建失败属于程序错误
		panic(err)
	}
	return reg
}
