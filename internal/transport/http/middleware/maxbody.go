package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-gin-rbac-posts/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；超限时 JSON 解码报错，由 ez 按 413 返回
func MaxBodyBytes(n int64) gin.HandlerFunc {
	if n <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, resp.Failed("request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
