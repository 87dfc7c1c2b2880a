package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/rbac"
	resp "go-gin-rbac-posts/internal/transport/http/response"
)

const KeyIdentity = "identity"

// Authenticator 一个 guard 的 token 校验
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*rbac.Identity, error)
}

// Authenticate 解析 Bearer token，成功后把 Identity 放进上下文
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, resp.MsgUnauthorized)
			return
		}
		id, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				zap.L().Debug("token rejected", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
				resp.Abort(c, http.StatusUnauthorized, resp.MsgUnauthorized)
				return
			}
			resp.Abort(c, http.StatusInternalServerError, resp.Failed(err.Error()))
			return
		}
		c.Set(KeyIdentity, id)
		c.Next()
	}
}

// IdentityFrom 未认证时返回 nil
func IdentityFrom(c *gin.Context) *rbac.Identity {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*rbac.Identity)
	return id
}
