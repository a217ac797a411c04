package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// 限流响应头
const (
	HeaderRateLimitService   = "X-RateLimit-Service"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

// RateLimit 返回限流标注中间件
// 根据已解析的目标服务查配额表并写出三个响应头；不维护跨请求计数，
// remaining 恒为 limit-1，只做观测提示，不拦截请求
func RateLimit(limits map[string]int, defaultLimit int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res, ok := ResolvedRoute(c)
			if !ok {
				// 路由中间件未执行时不标注
				return next(c)
			}

			limit, found := limits[res.TargetService]
			if !found {
				limit = defaultLimit
			}

			header := c.Response().Header()
			header.Set(HeaderRateLimitService, res.TargetService)
			header.Set(HeaderRateLimitLimit, strconv.Itoa(limit))
			header.Set(HeaderRateLimitRemaining, strconv.Itoa(limit-1))

			return next(c)
		}
	}
}
