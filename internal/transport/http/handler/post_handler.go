package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-rbac-posts/internal/i18n"
	"go-gin-rbac-posts/internal/rbac"
	"go-gin-rbac-posts/internal/service"
	"go-gin-rbac-posts/internal/transport/http/ez"
	resp "go-gin-rbac-posts/internal/transport/http/response"
)

// postReq title/body 可以是字符串（请求语言）或 {locale: text}
type postReq struct {
	Title  i18n.Text `json:"title"`
	Body   i18n.Text `json:"body"`
	Status *int      `json:"status" binding:"omitempty,oneof=0 1"`
}

func (r *postReq) input() service.PostInput {
	return service.PostInput{Title: r.Title, Body: r.Body, Status: r.Status}
}

type PostHandler struct {
	svc     *service.PostService
	locales *i18n.Locales
	auth    gin.HandlerFunc
}

func NewPostHandler(svc *service.PostService, locales *i18n.Locales, auth gin.HandlerFunc) *PostHandler {
	return &PostHandler{svc: svc, locales: locales, auth: auth}
}

// lang ?lang= 优先，其次 Accept-Language
func (h *PostHandler) lang(c *gin.Context) string {
	return h.locales.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
}

// byID 包装需要路径 id 的动作
func (h *PostHandler) byID(fn func(c *gin.Context, id uint, lang string) (*service.PostView, error)) func(*gin.Context, *rbac.Identity, *struct{}) (*service.PostView, error) {
	return func(c *gin.Context, _ *rbac.Identity, _ *struct{}) (*service.PostView, error) {
		id, err := ez.ParamID(c, "id")
		if err != nil {
			return nil, err
		}
		return fn(c, id, h.lang(c))
	}
}

func (h *PostHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/posts", h.auth))

	list := func(fn func(*gin.Context, string) ([]service.PostView, error)) func(*gin.Context, *rbac.Identity, *struct{}) ([]service.PostView, error) {
		return func(c *gin.Context, _ *rbac.Identity, _ *struct{}) ([]service.PostView, error) {
			return fn(c, h.lang(c))
		}
	}

	ez.Register(e, ez.Action[struct{}, []service.PostView]{
		Method:      http.MethodGet,
		Path:        "",
		Permissions: []rbac.Permission{rbac.ViewPosts},
		Message:     resp.MsgListed,
		Handler: list(func(c *gin.Context, lang string) ([]service.PostView, error) {
			return h.svc.List(c.Request.Context(), lang)
		}),
	})
	for _, p := range []string{"/archived", "/trashed"} {
		ez.Register(e, ez.Action[struct{}, []service.PostView]{
			Method:      http.MethodGet,
			Path:        p,
			Permissions: []rbac.Permission{rbac.ViewArchivedPosts},
			Message:     resp.MsgListedArchived,
			Handler: list(func(c *gin.Context, lang string) ([]service.PostView, error) {
				return h.svc.ListArchived(c.Request.Context(), lang)
			}),
		})
	}
	ez.Register(e, ez.Action[postReq, *service.PostView]{
		Method:      http.MethodPost,
		Path:        "",
		Binder:      ez.BindJSON,
		Permissions: []rbac.Permission{rbac.AddPost},
		Status:      http.StatusCreated,
		Message:     resp.MsgAdded,
		Handler: func(c *gin.Context, _ *rbac.Identity, in *postReq) (*service.PostView, error) {
			return h.svc.Create(c.Request.Context(), in.input(), h.lang(c))
		},
	})
	ez.Register(e, ez.Action[struct{}, *service.PostView]{
		Method:      http.MethodGet,
		Path:        "/:id",
		Permissions: []rbac.Permission{rbac.ViewPostByID},
		Message:     resp.MsgShown,
		Handler: h.byID(func(c *gin.Context, id uint, lang string) (*service.PostView, error) {
			return h.svc.Show(c.Request.Context(), id, lang)
		}),
	})
	for _, m := range []string{http.MethodPut, http.MethodPatch} {
		ez.Register(e, ez.Action[postReq, *service.PostView]{
			Method:      m,
			Path:        "/:id",
			Binder:      ez.BindJSON,
			Permissions: []rbac.Permission{rbac.EditPost},
			Message:     resp.MsgUpdated,
			Handler: func(c *gin.Context, _ *rbac.Identity, in *postReq) (*service.PostView, error) {
				id, err := ez.ParamID(c, "id")
				if err != nil {
					return nil, err
				}
				return h.svc.Update(c.Request.Context(), id, in.input(), h.lang(c))
			},
		})
	}
	archive := h.byID(func(c *gin.Context, id uint, lang string) (*service.PostView, error) {
		return h.svc.Archive(c.Request.Context(), id, lang)
	})
	for _, r := range [][2]string{{http.MethodDelete, "/:id"}, {http.MethodPatch, "/:id/archive"}} {
		ez.Register(e, ez.Action[struct{}, *service.PostView]{
			Method:      r[0],
			Path:        r[1],
			Permissions: []rbac.Permission{rbac.ArchivePost},
			Message:     resp.MsgArchived,
			Handler:     archive,
		})
	}
	restore := h.byID(func(c *gin.Context, id uint, lang string) (*service.PostView, error) {
		return h.svc.Restore(c.Request.Context(), id, lang)
	})
	for _, m := range []string{http.MethodPost, http.MethodPatch} {
		ez.Register(e, ez.Action[struct{}, *service.PostView]{
			Method:      m,
			Path:        "/:id/restore",
			Permissions: []rbac.Permission{rbac.RestorePost},
			Message:     resp.MsgRestored,
			Handler:     restore,
		})
	}
	ez.Register(e, ez.Action[struct{}, any]{
		Method:      http.MethodDelete,
		Path:        "/:id/force-delete",
		Permissions: []rbac.Permission{rbac.DeletePost},
		Message:     resp.MsgDeleted,
		Handler: func(c *gin.Context, _ *rbac.Identity, _ *struct{}) (any, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return nil, h.svc.ForceDelete(c.Request.Context(), id)
		},
	})
}
