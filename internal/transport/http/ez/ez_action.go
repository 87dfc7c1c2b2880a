package ez

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/rbac"
	mdw "go-gin-rbac-posts/internal/transport/http/middleware"
	resp "go-gin-rbac-posts/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ {
	setupValidator()
	return EZ{g: g}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method string // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path   string // 例："/login"、"/posts/:id/restore"
	Binder Binder
	// Auth 要求已认证（分组需挂 mdw.Authenticate）
	Auth bool
	// Permissions 满足其一即可；非空时隐含 Auth
	Permissions []rbac.Permission
	Status      int    // 成功时的 HTTP 状态，默认 200
	Message     string // 成功文案
	Handler     func(c *gin.Context, id *rbac.Identity, in *I) (O, error)
}

// Register 在当前 EZ 下注册动作接口
func Register[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	// 路由表里写错权限名直接 panic，不会变成放行
	perms := rbac.MustAll(a.Permissions...)
	needAuth := a.Auth || len(perms) > 0

	h := func(c *gin.Context) {
		// 1) 鉴权 / 权限
		id := mdw.IdentityFrom(c)
		if needAuth && id == nil {
			resp.Write(c, http.StatusUnauthorized, resp.Fail(resp.MsgUnauthorized, nil))
			return
		}
		if len(perms) > 0 && !id.CanAny(perms...) {
			resp.Write(c, http.StatusForbidden, resp.Fail(resp.MsgForbidden, nil))
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			writeBindError(c, bindErr)
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, id, &in)
		if err != nil {
			WriteError(c, err)
			return
		}
		resp.Write(c, status, resp.OK(a.Message, out))
	}

	e.g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

// WriteError 领域错误 -> HTTP 状态 + 失败信封
func WriteError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Write(c, http.StatusUnprocessableEntity, resp.Fail(resp.MsgValidation, verr.Fields))
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		resp.Write(c, http.StatusUnauthorized, resp.Fail(resp.MsgUnauthorized, nil))
	case errors.Is(err, domain.ErrForbidden):
		resp.Write(c, http.StatusForbidden, resp.Fail(resp.MsgForbidden, nil))
	case errors.Is(err, domain.ErrNotFound):
		resp.Write(c, http.StatusNotFound, resp.Fail(resp.MsgNotFound, nil))
	default:
		resp.Write(c, http.StatusInternalServerError, resp.Fail(resp.Failed(err.Error()), nil))
	}
}

func writeBindError(c *gin.Context, err error) {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		resp.Write(c, http.StatusUnprocessableEntity, resp.Fail(resp.MsgValidation, fieldErrors(ves)))
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		resp.Write(c, http.StatusRequestEntityTooLarge, resp.Fail(resp.Failed("request body too large"), nil))
		return
	}
	resp.Write(c, http.StatusBadRequest, resp.Fail(resp.Failed("invalid request body: "+err.Error()), nil))
}

// ParamID 路径上的数字 id；非法 id 按不存在处理
func ParamID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, domain.ErrNotFound
	}
	return uint(v), nil
}
