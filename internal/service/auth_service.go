package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-gin-rbac-posts/internal/core/auth"
	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/rbac"
	"go-gin-rbac-posts/pkg/utils"
)

// AccountStore 某一类主体的存储（users / providers / applicants）
type AccountStore[P domain.Principal] interface {
	FindByLogin(ctx context.Context, phone, email string) (P, error)
	FindByID(ctx context.Context, id uint) (P, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	PhoneTaken(ctx context.Context, phone string) (bool, error)
	Create(ctx context.Context, p P, roles []domain.Role) error
}

type RoleLookup interface {
	FindByNames(ctx context.Context, names []string) ([]domain.Role, error)
}

type LoginInput struct {
	Phone    string
	Email    string
	Password string
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Roles    []string
}

// TokenBundle 登录 / 刷新返回体
type TokenBundle struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int64            `json:"expires_in"`
	Principal   domain.Principal `json:"principal"`
	Roles       []string         `json:"roles"`
	Permissions []string         `json:"permissions"`
}

type AuthOptions[P domain.Principal] struct {
	Kind     domain.Kind
	Accounts AccountStore[P]
	Roles    RoleLookup
	Tokens   *auth.JWTer
	Denylist auth.Denylist
	// New 由公共字段构造具体主体
	New func(domain.Account) P
	// AllowRoleChoice 注册时是否接受调用方指定角色（仅 admin）
	AllowRoleChoice bool
}

// AuthService 一个 guard 的登录/注册/注销/刷新
type AuthService[P domain.Principal] struct {
	opt AuthOptions[P]
}

func NewAuthService[P domain.Principal](opt AuthOptions[P]) *AuthService[P] {
	return &AuthService[P]{opt: opt}
}

func (s *AuthService[P]) Kind() domain.Kind { return s.opt.Kind }

func (s *AuthService[P]) Login(ctx context.Context, in LoginInput) (*TokenBundle, error) {
	p, err := s.opt.Accounts.FindByLogin(ctx, strings.TrimSpace(in.Phone), strings.TrimSpace(in.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.opt.Kind, err)
	}
	if !utils.CheckPassword(in.Password, p.Base().PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(p)
}

func (s *AuthService[P]) Register(ctx context.Context, in RegisterInput) (P, error) {
	var zero P
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	verr := domain.NewValidationError()
	if taken, err := s.opt.Accounts.EmailTaken(ctx, in.Email); err != nil {
		return zero, fmt.Errorf("check email: %w", err)
	} else if taken {
		verr.Add("email", "The email has already been taken.")
	}
	if taken, err := s.opt.Accounts.PhoneTaken(ctx, in.Phone); err != nil {
		return zero, fmt.Errorf("check phone: %w", err)
	} else if taken {
		verr.Add("phone", "The phone has already been taken.")
	}
	roles, err := s.rolesFor(ctx, in.Roles, verr)
	if err != nil {
		return zero, err
	}
	if err := verr.OrNil(); err != nil {
		return zero, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return zero, err
	}
	p := s.opt.New(domain.Account{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	})
	if err := s.opt.Accounts.Create(ctx, p, roles); err != nil {
		return zero, fmt.Errorf("register %s: %w", s.opt.Kind, err)
	}
	return p, nil
}

// rolesFor admin 可自选角色（不能是保留角色），其它 guard 固定默认角色
func (s *AuthService[P]) rolesFor(ctx context.Context, requested []string, verr *domain.ValidationError) ([]domain.Role, error) {
	names := []string{s.opt.Kind.DefaultRole()}
	if s.opt.AllowRoleChoice {
		if req := dedupe(requested); len(req) > 0 {
			names = req
		}
	}
	roles, err := s.opt.Roles.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	found := make(map[string]domain.Role, len(roles))
	for _, r := range roles {
		found[r.Name] = r
	}
	out := make([]domain.Role, 0, len(names))
	for _, n := range names {
		r, ok := found[n]
		switch {
		case !ok && !s.opt.AllowRoleChoice:
			return nil, fmt.Errorf("default role %q is not seeded", n)
		case !ok, r.ID == domain.ReservedRoleID:
			verr.Add("roles_name", fmt.Sprintf("The selected role %q is invalid.", n))
		default:
			out = append(out, r)
		}
	}
	return out, nil
}

// Authenticate 解析 token 并加载主体；guard 不符、已注销、主体不存在都视为未认证
func (s *AuthService[P]) Authenticate(ctx context.Context, raw string) (*rbac.Identity, error) {
	claims, err := s.opt.Tokens.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.Guard != string(s.opt.Kind) {
		return nil, fmt.Errorf("%w: token issued for guard %q", domain.ErrUnauthenticated, claims.Guard)
	}
	revoked, err := s.opt.Denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", domain.ErrUnauthenticated)
	}
	id, err := strconv.ParseUint(claims.UID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrUnauthenticated)
	}
	p, err := s.opt.Accounts.FindByID(ctx, uint(id))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s %d no longer exists", domain.ErrUnauthenticated, s.opt.Kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.opt.Kind, err)
	}
	return rbac.NewIdentity(s.opt.Kind, claims, p), nil
}

// Logout 当前 token 进 denylist，直到自然过期
func (s *AuthService[P]) Logout(ctx context.Context, id *rbac.Identity) error {
	if id == nil || id.Claims == nil {
		return domain.ErrUnauthenticated
	}
	return s.revoke(ctx, id.Claims)
}

// Refresh 换发新 token，旧 token 立即失效
func (s *AuthService[P]) Refresh(ctx context.Context, id *rbac.Identity) (*TokenBundle, error) {
	if id == nil || id.Claims == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.revoke(ctx, id.Claims); err != nil {
		return nil, err
	}
	return s.issue(id.Principal)
}

func (s *AuthService[P]) revoke(ctx context.Context, c *auth.Claims) error {
	if c.ExpiresAt == nil {
		return nil
	}
	if err := s.opt.Denylist.Revoke(ctx, c.ID, c.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *AuthService[P]) issue(p domain.Principal) (*TokenBundle, error) {
	tok, err := s.opt.Tokens.Issue(strconv.FormatUint(uint64(p.Base().ID), 10), string(s.opt.Kind))
	if err != nil {
		return nil, err
	}
	return &TokenBundle{
		AccessToken: tok.Raw,
		TokenType:   "bearer",
		ExpiresIn:   s.opt.Tokens.ExpiresIn(),
		Principal:   p,
		Roles:       p.RoleNames(),
		Permissions: p.PermissionNames(),
	}, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
