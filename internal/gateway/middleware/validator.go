package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// ValidationErrorResponse 校验失败响应结构
type ValidationErrorResponse struct {
	Error     string `json:"error"`              // 错误描述
	Expected  string `json:"expected,omitempty"` // 期望的内容类型
	Received  string `json:"received,omitempty"` // 实际收到的内容类型或大小
	MaxSize   string `json:"max_size,omitempty"` // 允许的最大请求体
	Timestamp string `json:"timestamp"`          // 时间戳
}

// Validator 返回请求校验中间件
// 拒绝超过大小上限的请求体（413），并要求API路径下的非GET请求
// 声明JSON内容类型（400）；更深层的请求体校验由下游服务自行负责
func Validator(maxBodySize int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// 请求体大小上限
			if req.ContentLength > maxBodySize {
				return c.JSON(http.StatusRequestEntityTooLarge, &ValidationErrorResponse{
					Error:     "请求体超过大小上限",
					MaxSize:   fmt.Sprintf("%d bytes", maxBodySize),
					Received:  fmt.Sprintf("%d bytes", req.ContentLength),
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}

			// API路径下的非GET请求必须声明JSON内容类型
			if req.Method != http.MethodGet && strings.HasPrefix(req.URL.Path, "/api/") {
				contentType := req.Header.Get(echo.HeaderContentType)
				if !strings.Contains(contentType, echo.MIMEApplicationJSON) {
					return c.JSON(http.StatusBadRequest, &ValidationErrorResponse{
						Error:     "内容类型不符合要求",
						Expected:  echo.MIMEApplicationJSON,
						Received:  contentType,
						Timestamp: time.Now().Format(time.RFC3339),
					})
				}
			}

			return next(c)
		}
	}
}
