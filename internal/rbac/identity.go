package rbac

import (
	"go-gin-rbac-posts/internal/core/auth"
	"go-gin-rbac-posts/internal/domain"
)

// Identity 每个请求由认证中间件解析一次，交给 handler 使用
type Identity struct {
	Guard     domain.Kind
	Claims    *auth.Claims
	Principal domain.Principal
	granted   map[Permission]struct{}
}

func NewIdentity(guard domain.Kind, claims *auth.Claims, p domain.Principal) *Identity {
	granted := make(map[Permission]struct{})
	for _, name := range p.PermissionNames() {
		// 目录外的历史权限名直接忽略
		if perm, err := Parse(name); err == nil {
			granted[perm] = struct{}{}
		}
	}
	return &Identity{Guard: guard, Claims: claims, Principal: p, granted: granted}
}

func (i *Identity) Can(p Permission) bool {
	if i == nil {
		return false
	}
	_, ok := i.granted[p]
	return ok
}

// CanAny 任一权限满足即可
func (i *Identity) CanAny(perms ...Permission) bool {
	if len(perms) == 0 {
		return true
	}
	for _, p := range perms {
		if i.Can(p) {
			return true
		}
	}
	return false
}
