package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"go-gin-rbac-posts/internal/core/auth"
	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/rbac"
)

func engine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := engine(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w := serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))
	assert.Equal(t, "abc", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, strings.Repeat("x", 65))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestRateLimit(t *testing.T) {
	r := engine(RateLimit(1, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	open := engine(RateLimit(0, 0))
	open.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(open, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := engine(RateLimitPerIP(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestConcurrencyLimit(t *testing.T) {
	entered, release := make(chan struct{}), make(chan struct{})
	r := engine(ConcurrencyLimit(1))
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	done := make(chan int)
	go func() { done <- serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code }()
	<-entered
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
	close(release)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := engine(MaxBodyBytes(4))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abcd"))).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abcdef"))).Code)

	// 未声明长度的流在读取时截断
	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("abcdef")))
	req.ContentLength = -1
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, req).Code)
}

func TestTimeout(t *testing.T) {
	r := engine(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusGatewayTimeout, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
}

type stubAuth struct {
	token string
	err   error
}

func (s stubAuth) Authenticate(_ context.Context, raw string) (*rbac.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	if raw != s.token {
		return nil, domain.ErrUnauthenticated
	}
	u := &domain.User{Account: domain.Account{ID: 7}}
	return rbac.NewIdentity(domain.KindAdmin, &auth.Claims{UID: "7"}, u), nil
}

func TestAuthenticate(t *testing.T) {
	handler := func(c *gin.Context) {
		id := IdentityFrom(c)
		c.String(http.StatusOK, "%s:%d", id.Guard, id.Principal.Base().ID)
	}
	call := func(a Authenticator, header string) *httptest.ResponseRecorder {
		r := engine(Authenticate(a))
		r.GET("/", handler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return serve(r, req)
	}

	w := call(stubAuth{token: "good"}, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin:7", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(stubAuth{token: "good"}, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(stubAuth{token: "good"}, "Basic good").Code)
	assert.Equal(t, http.StatusUnauthorized, call(stubAuth{token: "good"}, "Bearer bad").Code)
	assert.Equal(t, http.StatusInternalServerError, call(stubAuth{err: errors.New("redis down")}, "Bearer good").Code)
}

func TestMaskQuery(t *testing.T) {
	got := maskQuery(map[string][]string{"Password": {"x"}, "lang": {"ar"}})
	assert.Equal(t, []string{"****"}, got["Password"])
	assert.Equal(t, []string{"ar"}, got["lang"])
}

func TestAccessLogAndMetrics(t *testing.T) {
	r := engine(RequestID(), Metrics(), AccessLog(zap.NewNop()))
	r.GET("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := serve(r, httptest.NewRequest(http.MethodGet, "/items/1?token=secret", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil)).Code)
}
