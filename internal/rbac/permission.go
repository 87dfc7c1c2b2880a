// Package rbac 权限目录（类型化枚举）与请求级身份
package rbac

import "fmt"

// Permission 目录项；路由只引用常量，不写裸字符串
type Permission string

const (
	RolesViewRoles    Permission = "Roles View Roles"
	RolesAddRole      Permission = "Roles Add Role"
	RolesViewRoleByID Permission = "Roles View Role By ID"
	RolesEditRole     Permission = "Roles Edit Role"
	RolesDeleteRole   Permission = "Roles Delete Role"

	ViewPosts         Permission = "View Posts"
	AddPost           Permission = "Add Post"
	ViewPostByID      Permission = "View Post By ID"
	EditPost          Permission = "Edit Post"
	ArchivePost       Permission = "Archive Post"
	ViewArchivedPosts Permission = "View Archived Posts"
	RestorePost       Permission = "Restore Post"
	DeletePost        Permission = "Delete Post"
)

var catalog = []Permission{
	RolesViewRoles,
	RolesAddRole,
	RolesViewRoleByID,
	RolesEditRole,
	RolesDeleteRole,
	ViewPosts,
	AddPost,
	ViewPostByID,
	EditPost,
	ArchivePost,
	ViewArchivedPosts,
	RestorePost,
	DeletePost,
}

var known = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		m[p] = struct{}{}
	}
	return m
}()

// All 按种子顺序返回全部权限
func All() []Permission {
	return append([]Permission(nil), catalog...)
}

// PostPermissions 默认 Admin 角色拥有的文章权限
func PostPermissions() []Permission {
	return []Permission{ViewPosts, AddPost, ViewPostByID, EditPost, ArchivePost, ViewArchivedPosts, RestorePost, DeletePost}
}

func (p Permission) Valid() bool {
	_, ok := known[p]
	return ok
}

func (p Permission) String() string { return string(p) }

// Parse 库里的权限名 -> 目录项
func Parse(name string) (Permission, error) {
	p := Permission(name)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", name)
	}
	return p, nil
}

// MustAll 有目录外的名字直接 panic，用于静态路由表
func MustAll(perms ...Permission) []Permission {
	for _, p := range perms {
		if !p.Valid() {
			panic(fmt.Sprintf("rbac: unknown permission %q", p))
		}
	}
	return perms
}
