package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hewenyu/mesh-gateway/internal/config"
	gatewaymw "github.com/hewenyu/mesh-gateway/internal/gateway/middleware"
	"github.com/hewenyu/mesh-gateway/internal/registry"
)

// ProxyErrorResponse 代理失败响应结构
type ProxyErrorResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// ProxyHandler 反向代理处理器
// 消费路由中间件挂在上下文里的解析结果，把请求转发到目标服务
type ProxyHandler struct {
	registry *registry.Registry
	proxies  map[string]*httputil.ReverseProxy
	logger   config.Logger
}

// NewProxyHandler 创建反向代理处理器
// 每个服务的代理在启动时构建一次，之后只读
func NewProxyHandler(reg *registry.Registry, logger config.Logger) (*ProxyHandler, error) {
	proxies := make(map[string]*httputil.ReverseProxy, len(reg.Services()))
	for _, svc := range reg.Services() {
		target, err := url.Parse(svc.BaseURL)
		if err != nil {
			return nil, err
		}

		proxy := httputil.NewSingleHostReverseProxy(target)
		name := svc.Name
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("转发请求到下游服务失败",
				zap.String("service", name),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w.WriteHeader(http.StatusBadGateway)
			// 客户端永远收到结构化JSON，而不是裸错误
			body, _ := json.Marshal(&ProxyErrorResponse{
				Status:    "error",
				Error:     "下游服务不可用",
				Service:   name,
				Timestamp: time.Now().Format(time.RFC3339),
			})
			w.Write(body)
		}
		proxies[svc.Name] = proxy
	}

	return &ProxyHandler{
		registry: reg,
		proxies:  proxies,
		logger:   logger,
	}, nil
}

// Forward 转发处理函数
// 路由中间件保证解析结果存在；以防万一缺失时回退到重新解析
func (h *ProxyHandler) Forward(c echo.Context) error {
	res, ok := gatewaymw.ResolvedRoute(c)
	if !ok {
		res = h.registry.Resolve(c.Request().URL.Path)
	}

	proxy := h.proxies[res.TargetService]
	proxy.ServeHTTP(c.Response(), c.Request())
	return nil
}
