package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-rbac-posts/internal/core/config"
	"go-gin-rbac-posts/internal/core/server"
	mdw "go-gin-rbac-posts/internal/transport/http/middleware"
	resp "go-gin-rbac-posts/internal/transport/http/response"
)

func NewAPIEngine(l *zap.Logger, c config.HTTP, reg *Registry) *gin.Engine {
	r := server.NewRouter(l)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(c.RateLimitRPS), c.RateLimitBurst),
		mdw.ConcurrencyLimit(c.MaxConcurrent),
		mdw.MaxBodyBytes(c.MaxBodyBytes),
		mdw.Timeout(time.Duration(c.RequestTimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		resp.Write(c, http.StatusNotFound, resp.Fail(resp.MsgNotFound, nil))
	})

	// 前缀
	reg.MountAll(r.Group("/v1"))
	return r
}
