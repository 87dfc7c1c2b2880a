package response

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// New 构造信封；data 为 nil 时输出 null
func New(message string, data any, code int) Envelope {
	return Envelope{Code: code, Message: message, Data: data}
}

func OK(message string, data any) Envelope { return New(message, data, CodeOK) }

func Fail(message string, data any) Envelope { return New(message, data, CodeFail) }

// Write 写响应；失败信封记一条 error 日志
func Write(c *gin.Context, status int, env Envelope) {
	if env.Code != CodeOK {
		zap.L().Error("request failed",
			zap.String("message", env.Message),
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("data", env.Data),
		)
	}
	c.JSON(status, env)
}

// Abort 写失败信封并终止后续 handler
func Abort(c *gin.Context, status int, message string) {
	Write(c, status, Fail(message, nil))
	c.Abort()
}
