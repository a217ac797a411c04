package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/hewenyu/mesh-gateway/internal/registry"
)

// routeResolutionKey 路由解析结果在echo上下文中的键名
const routeResolutionKey = "route_resolution"

// Routing 返回路由解析中间件
// 根据请求路径在注册表中解析目标服务，并把解析结果挂到请求上下文；
// 由于注册表带兜底规则，解析不会失败，中间件本身不做网络转发
func Routing(reg *registry.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := reg.Resolve(c.Request().URL.Path)
			c.Set(routeResolutionKey, res)
			return next(c)
		}
	}
}

// ResolvedRoute 从echo上下文中取出路由解析结果
// 路由中间件尚未执行时返回false
func ResolvedRoute(c echo.Context) (registry.RouteResolution, bool) {
	value := c.Get(routeResolutionKey)
	if value == nil {
		return registry.RouteResolution{}, false
	}
	res, ok := value.(registry.RouteResolution)
	return res, ok
}
