package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go-gin-rbac-posts/internal/core/cache"
	"go-gin-rbac-posts/internal/domain"
)

const permissionCatalogKey = "rbac:permissions"

type RoleStore interface {
	List(ctx context.Context, excludeIDs ...uint) ([]domain.Role, error)
	Find(ctx context.Context, id uint) (*domain.Role, error)
	NameTaken(ctx context.Context, name string, exceptID uint) (bool, error)
	Permissions(ctx context.Context) ([]domain.Permission, error)
	PermissionsByIDs(ctx context.Context, ids []uint) ([]domain.Permission, error)
	Create(ctx context.Context, role *domain.Role, perms []domain.Permission) error
	Update(ctx context.Context, role *domain.Role, perms []domain.Permission) error
	Delete(ctx context.Context, id uint) error
}

// RoleInput PermissionIDs 为 nil 表示未提供（校验失败），空切片表示清空权限
type RoleInput struct {
	Name          string
	PermissionIDs []uint
}

type RoleService struct {
	store RoleStore
	cache *cache.Cache
	ttl   time.Duration
}

// NewRoleService c 为 nil 或 ttl<=0 时权限目录直接查库
func NewRoleService(store RoleStore, c *cache.Cache, ttl time.Duration) *RoleService {
	return &RoleService{store: store, cache: c, ttl: ttl}
}

// List 不含保留角色
func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.store.List(ctx, domain.ReservedRoleID)
}

// Permissions 权限目录只读，走缓存
func (s *RoleService) Permissions(ctx context.Context) ([]domain.Permission, error) {
	if s.cache == nil || s.ttl <= 0 {
		return s.store.Permissions(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, permissionCatalogKey, s.ttl, s.store.Permissions)
}

func (s *RoleService) Show(ctx context.Context, id uint) (*domain.Role, error) {
	return s.find(ctx, id)
}

func (s *RoleService) Create(ctx context.Context, in RoleInput) (*domain.Role, error) {
	name := strings.TrimSpace(in.Name)
	verr := domain.NewValidationError()
	if err := s.checkName(ctx, verr, name, 0); err != nil {
		return nil, err
	}
	perms, err := s.permissions(ctx, verr, in.PermissionIDs)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	role := &domain.Role{Name: name}
	if err := s.store.Create(ctx, role, perms); err != nil {
		return nil, err
	}
	return role, nil
}

// Update 先判存在（保留角色视为不存在），再校验名称，最后改名 + 全量同步权限
func (s *RoleService) Update(ctx context.Context, id uint, in RoleInput) (*domain.Role, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	verr := domain.NewValidationError()
	if err := s.checkName(ctx, verr, name, id); err != nil {
		return nil, err
	}
	perms, err := s.permissions(ctx, verr, in.PermissionIDs)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, &domain.Role{ID: id, Name: name}, perms); err != nil {
		return nil, err
	}
	return s.store.Find(ctx, id)
}

func (s *RoleService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *RoleService) find(ctx context.Context, id uint) (*domain.Role, error) {
	if id == domain.ReservedRoleID {
		return nil, domain.ErrNotFound
	}
	return s.store.Find(ctx, id)
}

func (s *RoleService) checkName(ctx context.Context, verr *domain.ValidationError, name string, exceptID uint) error {
	switch {
	case name == "":
		verr.Add("name", "The name field is required.")
		return nil
	case utf8.RuneCountInString(name) > 255:
		verr.Add("name", "The name must not be greater than 255 characters.")
		return nil
	}
	taken, err := s.store.NameTaken(ctx, name, exceptID)
	if err != nil {
		return fmt.Errorf("check role name: %w", err)
	}
	if taken {
		verr.Add("name", "The name has already been taken.")
	}
	return nil
}

// permissions 去重后每个 id 都必须存在
func (s *RoleService) permissions(ctx context.Context, verr *domain.ValidationError, ids []uint) ([]domain.Permission, error) {
	if ids == nil {
		verr.Add("permissions_IDs", "The permissions IDs field is required.")
		return nil, nil
	}
	seen := make(map[uint]struct{}, len(ids))
	uniq := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	perms, err := s.store.PermissionsByIDs(ctx, uniq)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	if len(perms) != len(uniq) {
		found := make(map[uint]struct{}, len(perms))
		for _, p := range perms {
			found[p.ID] = struct{}{}
		}
		for _, id := range uniq {
			if _, ok := found[id]; !ok {
				verr.Add("permissions_IDs", fmt.Sprintf("The selected permission %d is invalid.", id))
			}
		}
	}
	return perms, nil
}

