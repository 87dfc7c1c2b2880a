// Package app 组装仓储、服务与 HTTP handler；cmd/api 与端到端测试都通过 New 构建
package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"go-gin-rbac-posts/internal/core/auth"
	"go-gin-rbac-posts/internal/core/cache"
	"go-gin-rbac-posts/internal/core/config"
	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/i18n"
	"go-gin-rbac-posts/internal/repo"
	"go-gin-rbac-posts/internal/service"
	"go-gin-rbac-posts/internal/transport/http/handler"
	mdw "go-gin-rbac-posts/internal/transport/http/middleware"
	"go-gin-rbac-posts/internal/transport/http/router"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Log    *zap.Logger
}

type App struct {
	Engine  *gin.Engine
	Tokens  *auth.JWTer
	Locales *i18n.Locales

	Admins     *service.AuthService[*domain.User]
	Providers  *service.AuthService[*domain.Provider]
	Applicants *service.AuthService[*domain.Applicant]
	Roles      *service.RoleService
	Posts      *service.PostService
}

func New(d Deps) (*App, error) {
	cfg := d.Config
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is empty")
	}
	locales, err := i18n.NewLocales(cfg.Locale.Default, cfg.Locale.Supported)
	if err != nil {
		return nil, fmt.Errorf("locales: %w", err)
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	deny := auth.NewRedisDenylist(d.Redis)

	// 仓储
	roleRepo := repo.NewRoleRepo(d.DB)
	postRepo := repo.NewPostRepo(d.DB)

	// 服务：三个 guard 各一份
	a := &App{Tokens: jwter, Locales: locales}
	a.Admins = service.NewAuthService(service.AuthOptions[*domain.User]{
		Kind:            domain.KindAdmin,
		Accounts:        repo.NewAccountRepo[domain.User](d.DB),
		Roles:           roleRepo,
		Tokens:          jwter,
		Denylist:        deny,
		New:             func(acc domain.Account) *domain.User { return &domain.User{Account: acc} },
		AllowRoleChoice: true,
	})
	a.Providers = service.NewAuthService(service.AuthOptions[*domain.Provider]{
		Kind:     domain.KindProvider,
		Accounts: repo.NewAccountRepo[domain.Provider](d.DB),
		Roles:    roleRepo,
		Tokens:   jwter,
		Denylist: deny,
		New:      func(acc domain.Account) *domain.Provider { return &domain.Provider{Account: acc} },
	})
	a.Applicants = service.NewAuthService(service.AuthOptions[*domain.Applicant]{
		Kind:     domain.KindApplicant,
		Accounts: repo.NewAccountRepo[domain.Applicant](d.DB),
		Roles:    roleRepo,
		Tokens:   jwter,
		Denylist: deny,
		New:      func(acc domain.Account) *domain.Applicant { return &domain.Applicant{Account: acc} },
	})
	a.Roles = service.NewRoleService(roleRepo,
		cache.New(d.Redis, cfg.App.Name+":"),
		time.Duration(cfg.Redis.CatalogTTLSec)*time.Second)
	a.Posts = service.NewPostService(postRepo, locales)

	// 路由
	var loginLimit gin.HandlerFunc
	if n := cfg.App.HTTP.LoginPerMin; n > 0 {
		loginLimit = mdw.RateLimitPerIP(rate.Every(time.Minute/time.Duration(n)), n)
	}
	adminAuth := mdw.Authenticate(a.Admins)

	reg := &router.Registry{}
	reg.Register(
		handler.NewAuthHandler(a.Admins, loginLimit),
		handler.NewAuthHandler(a.Providers, loginLimit),
		handler.NewAuthHandler(a.Applicants, loginLimit),
		handler.NewRoleHandler(a.Roles, adminAuth),
		handler.NewPostHandler(a.Posts, locales, adminAuth),
	)
	a.Engine = router.NewAPIEngine(d.Log, cfg.App.HTTP, reg)
	return a, nil
}
