package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/rbac"
	"go-gin-rbac-posts/internal/service"
	"go-gin-rbac-posts/internal/transport/http/ez"
	mdw "go-gin-rbac-posts/internal/transport/http/middleware"
	resp "go-gin-rbac-posts/internal/transport/http/response"
)

type loginReq struct {
	Phone    string `json:"phone"    binding:"required_without=Email,omitempty,egphone"`
	Email    string `json:"email"    binding:"required_without=Phone,omitempty,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type registerReq struct {
	Name                 string   `json:"name"                  binding:"required,min=2,max=100"`
	Email                string   `json:"email"                 binding:"required,email,max=100"`
	Phone                string   `json:"phone"                 binding:"required,egphone"`
	Password             string   `json:"password"              binding:"required,min=6"`
	PasswordConfirmation string   `json:"password_confirmation" binding:"required,eqfield=Password"`
	RolesName            []string `json:"roles_name"            binding:"omitempty,dive,required,max=255"`
}

// AuthHandler 一个 guard 的 /v1/auth/{kind}/* 接口
type AuthHandler[P domain.Principal] struct {
	svc        *service.AuthService[P]
	loginLimit gin.HandlerFunc
}

// NewAuthHandler loginLimit 可为 nil
func NewAuthHandler[P domain.Principal](svc *service.AuthService[P], loginLimit gin.HandlerFunc) *AuthHandler[P] {
	return &AuthHandler[P]{svc: svc, loginLimit: loginLimit}
}

func (h *AuthHandler[P]) Priority() int { return 10 }

func (h *AuthHandler[P]) MountAPI(api *gin.RouterGroup) {
	kind := h.svc.Kind()
	g := api.Group("/auth/" + string(kind))

	// 公共：login / register
	lg := g.Group("")
	if h.loginLimit != nil {
		lg.Use(h.loginLimit)
	}
	ez.Register(ez.New(lg), ez.Action[loginReq, *service.TokenBundle]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Message: resp.MsgLoggedIn,
		Handler: func(c *gin.Context, _ *rbac.Identity, in *loginReq) (*service.TokenBundle, error) {
			b, err := h.svc.Login(c.Request.Context(), service.LoginInput{
				Phone: in.Phone, Email: in.Email, Password: in.Password,
			})
			switch {
			case err == nil:
				mdw.ObserveLogin(string(kind), "success")
			case errors.Is(err, domain.ErrInvalidCredentials):
				mdw.ObserveLogin(string(kind), "invalid")
			default:
				mdw.ObserveLogin(string(kind), "error")
			}
			return b, err
		},
	})

	public := ez.New(g)
	ez.Register(public, ez.Action[registerReq, P]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: kind.Label() + " has been registered successfully",
		Handler: func(c *gin.Context, _ *rbac.Identity, in *registerReq) (P, error) {
			return h.svc.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Phone: in.Phone, Password: in.Password, Roles: in.RolesName,
			})
		},
	})

	// 需登录：logout / refresh / user-profile
	authed := ez.New(g.Group("", mdw.Authenticate(h.svc)))
	ez.Register(authed, ez.Action[struct{}, any]{
		Method:  http.MethodPost,
		Path:    "/logout",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: resp.MsgLoggedOut,
		Handler: func(c *gin.Context, id *rbac.Identity, _ *struct{}) (any, error) {
			return nil, h.svc.Logout(c.Request.Context(), id)
		},
	})
	ez.Register(authed, ez.Action[struct{}, *service.TokenBundle]{
		Method:  http.MethodPost,
		Path:    "/refresh",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: resp.MsgRefreshed,
		Handler: func(c *gin.Context, id *rbac.Identity, _ *struct{}) (*service.TokenBundle, error) {
			return h.svc.Refresh(c.Request.Context(), id)
		},
	})
	ez.Register(authed, ez.Action[struct{}, domain.Principal]{
		Method:  http.MethodGet,
		Path:    "/user-profile",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: resp.MsgShown,
		Handler: func(c *gin.Context, id *rbac.Identity, _ *struct{}) (domain.Principal, error) {
			return id.Principal, nil
		},
	})
}
