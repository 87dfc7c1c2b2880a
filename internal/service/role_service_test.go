package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-rbac-posts/internal/core/cache"
	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/repo"
	"go-gin-rbac-posts/internal/service"
	"go-gin-rbac-posts/internal/testutil"
)

func newRoleService(t *testing.T) *service.RoleService {
	t.Helper()
	return service.NewRoleService(repo.NewRoleRepo(testutil.SeededDB(t)), nil, 0)
}

func permIDs(perms []domain.Permission) []uint {
	out := make([]uint, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.ID)
	}
	return out
}

func TestRoleReservedIsHidden(t *testing.T) {
	svc := newRoleService(t)
	ctx := context.Background()

	roles, err := svc.List(ctx)
	require.NoError(t, err)
	for _, r := range roles {
		assert.NotEqual(t, domain.ReservedRoleID, r.ID)
	}

	_, err = svc.Show(ctx, domain.ReservedRoleID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// 即便名称非法，保留角色也先按不存在处理
	_, err = svc.Update(ctx, domain.ReservedRoleID, service.RoleInput{Name: ""})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, domain.ReservedRoleID), domain.ErrNotFound)

	_, err = svc.Show(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Update(ctx, 999, service.RoleInput{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 999), domain.ErrNotFound)
}

func TestRoleCreateAndSync(t *testing.T) {
	svc := newRoleService(t)
	ctx := context.Background()
	perms, err := svc.Permissions(ctx)
	require.NoError(t, err)
	ids := permIDs(perms)

	r, err := svc.Create(ctx, service.RoleInput{Name: " Editor ", PermissionIDs: []uint{ids[0], ids[1], ids[1]}})
	require.NoError(t, err)
	assert.Equal(t, "Editor", r.Name)
	assert.Len(t, r.Permissions, 2)

	_, err = svc.Create(ctx, service.RoleInput{Name: "Editor"})
	assert.Contains(t, fields(t, err), "name")
	_, err = svc.Create(ctx, service.RoleInput{Name: domain.ReservedRoleName})
	assert.Contains(t, fields(t, err), "name")
	_, err = svc.Create(ctx, service.RoleInput{Name: "Ghost", PermissionIDs: []uint{9999}})
	assert.Contains(t, fields(t, err), "permissions_IDs")

	// 全量替换
	u, err := svc.Update(ctx, r.ID, service.RoleInput{Name: "Editor", PermissionIDs: []uint{ids[5]}})
	require.NoError(t, err)
	require.Len(t, u.Permissions, 1)
	assert.Equal(t, ids[5], u.Permissions[0].ID)

	// 与其它角色重名
	_, err = svc.Update(ctx, r.ID, service.RoleInput{Name: "Provider", PermissionIDs: []uint{ids[5]}})
	assert.Contains(t, fields(t, err), "name")

	// 未提供权限列表：拒绝，原权限不动
	_, err = svc.Update(ctx, r.ID, service.RoleInput{Name: "Renamed"})
	assert.Contains(t, fields(t, err), "permissions_IDs")
	got, err := svc.Show(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Editor", got.Name)
	assert.Equal(t, []uint{ids[5]}, permIDs(got.Permissions))

	// 显式空列表清空权限
	u, err = svc.Update(ctx, r.ID, service.RoleInput{Name: "Editor", PermissionIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, u.Permissions)

	require.NoError(t, svc.Delete(ctx, r.ID))
	_, err = svc.Show(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRolePermissionsCached(t *testing.T) {
	db := testutil.SeededDB(t)
	mr, rdb := testutil.Redis(t)
	svc := service.NewRoleService(repo.NewRoleRepo(db), cache.New(rdb, "t:"), time.Minute)
	ctx := context.Background()

	first, err := svc.Permissions(ctx)
	require.NoError(t, err)
	require.Len(t, first, 13)
	assert.True(t, mr.Exists("t:rbac:permissions"))

	// 缓存命中时不再读库
	require.NoError(t, db.Model(&domain.Permission{}).Where("id = ?", first[0].ID).Update("name", "Renamed").Error)
	second, err := svc.Permissions(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 13)
	assert.Equal(t, first[0].Name, second[0].Name)
}
