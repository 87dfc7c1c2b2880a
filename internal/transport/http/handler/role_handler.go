package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/rbac"
	"go-gin-rbac-posts/internal/service"
	"go-gin-rbac-posts/internal/transport/http/ez"
	resp "go-gin-rbac-posts/internal/transport/http/response"
)

// roleReq permissions_IDs 必填（全量替换）；显式 [] 表示清空
type roleReq struct {
	Name          string `json:"name"             binding:"required,max=255"`
	PermissionIDs []uint `json:"permissions_IDs"  binding:"required,dive,gt=0"`
}

// RoleHandler /v1/admin/roles，挂在 admin guard 下
type RoleHandler struct {
	svc  *service.RoleService
	auth gin.HandlerFunc
}

func NewRoleHandler(svc *service.RoleService, auth gin.HandlerFunc) *RoleHandler {
	return &RoleHandler{svc: svc, auth: auth}
}

func (h *RoleHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/admin/roles", h.auth))

	ez.Register(e, ez.Action[struct{}, []domain.Role]{
		Method:      http.MethodGet,
		Path:        "",
		Permissions: []rbac.Permission{rbac.RolesViewRoles},
		Message:     resp.MsgListed,
		Handler: func(c *gin.Context, _ *rbac.Identity, _ *struct{}) ([]domain.Role, error) {
			return h.svc.List(c.Request.Context())
		},
	})
	ez.Register(e, ez.Action[struct{}, []domain.Permission]{
		Method:      http.MethodGet,
		Path:        "/permissions",
		Permissions: []rbac.Permission{rbac.RolesAddRole, rbac.RolesEditRole},
		Message:     resp.MsgListed,
		Handler: func(c *gin.Context, _ *rbac.Identity, _ *struct{}) ([]domain.Permission, error) {
			return h.svc.Permissions(c.Request.Context())
		},
	})
	ez.Register(e, ez.Action[roleReq, *domain.Role]{
		Method:      http.MethodPost,
		Path:        "",
		Binder:      ez.BindJSON,
		Permissions: []rbac.Permission{rbac.RolesAddRole},
		Status:      http.StatusCreated,
		Message:     resp.MsgAdded,
		Handler: func(c *gin.Context, _ *rbac.Identity, in *roleReq) (*domain.Role, error) {
			return h.svc.Create(c.Request.Context(), service.RoleInput{Name: in.Name, PermissionIDs: in.PermissionIDs})
		},
	})
	ez.Register(e, ez.Action[struct{}, *domain.Role]{
		Method:      http.MethodGet,
		Path:        "/:id",
		Permissions: []rbac.Permission{rbac.RolesViewRoleByID},
		Message:     resp.MsgShown,
		Handler: func(c *gin.Context, _ *rbac.Identity, _ *struct{}) (*domain.Role, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.svc.Show(c.Request.Context(), id)
		},
	})
	for _, m := range []string{http.MethodPut, http.MethodPatch} {
		ez.Register(e, ez.Action[roleReq, *domain.Role]{
			Method:      m,
			Path:        "/:id",
			Binder:      ez.BindJSON,
			Permissions: []rbac.Permission{rbac.RolesEditRole},
			Message:     resp.MsgUpdated,
			Handler: func(c *gin.Context, _ *rbac.Identity, in *roleReq) (*domain.Role, error) {
				id, err := ez.ParamID(c, "id")
				if err != nil {
					return nil, err
				}
				return h.svc.Update(c.Request.Context(), id, service.RoleInput{Name: in.Name, PermissionIDs: in.PermissionIDs})
			},
		})
	}
	ez.Register(e, ez.Action[struct{}, any]{
		Method:      http.MethodDelete,
		Path:        "/:id",
		Permissions: []rbac.Permission{rbac.RolesDeleteRole},
		Message:     resp.MsgDeleted,
		Handler: func(c *gin.Context, _ *rbac.Identity, _ *struct{}) (any, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return nil, h.svc.Delete(c.Request.Context(), id)
		},
	})
}
