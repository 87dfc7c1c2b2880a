package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/repo"
	"go-gin-rbac-posts/internal/testutil"
)

func TestRoleRepoLifecycle(t *testing.T) {
	db := testutil.SeededDB(t)
	r := repo.NewRoleRepo(db)
	ctx := context.Background()

	perms, err := r.Permissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 13)

	role := &domain.Role{Name: "Editor"}
	require.NoError(t, r.Create(ctx, role, perms[:3]))
	require.NotZero(t, role.ID)

	got, err := r.Find(ctx, role.ID)
	require.NoError(t, err)
	assert.Len(t, got.Permissions, 3)

	// 全量替换，不是合并
	role.Name = "Chief Editor"
	require.NoError(t, r.Update(ctx, role, perms[5:6]))
	got, err = r.Find(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chief Editor", got.Name)
	require.Len(t, got.Permissions, 1)
	assert.Equal(t, perms[5].ID, got.Permissions[0].ID)

	require.NoError(t, r.Update(ctx, role, nil))
	got, err = r.Find(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Permissions)

	taken, err := r.NameTaken(ctx, "Chief Editor", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = r.NameTaken(ctx, "Chief Editor", role.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, r.Delete(ctx, role.ID))
	_, err = r.Find(ctx, role.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, role.ID), domain.ErrNotFound)
}

func TestRoleRepoListExcludes(t *testing.T) {
	db := testutil.SeededDB(t)
	r := repo.NewRoleRepo(db)
	ctx := context.Background()

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, domain.ReservedRoleName, all[0].Name)
	assert.Len(t, all[0].Permissions, 13)

	rest, err := r.List(ctx, domain.ReservedRoleID)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
	for _, role := range rest {
		assert.NotEqual(t, domain.ReservedRoleID, role.ID)
	}

	byName, err := r.FindByNames(ctx, []string{"Provider", "Nope"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Provider", byName[0].Name)
}

func TestRoleRepoDeleteDetachesPrincipals(t *testing.T) {
	db := testutil.SeededDB(t)
	roles := repo.NewRoleRepo(db)
	providers := repo.NewAccountRepo[domain.Provider](db)
	ctx := context.Background()

	role := &domain.Role{Name: "Temp"}
	require.NoError(t, roles.Create(ctx, role, nil))
	p := &domain.Provider{Account: domain.Account{Name: "Pat", Email: "pat@example.com", Phone: "01012345678", PasswordHash: "x"}}
	require.NoError(t, providers.Create(ctx, p, []domain.Role{*role}))
	assert.Equal(t, []string{"Temp"}, p.RoleNames())

	require.NoError(t, roles.Delete(ctx, role.ID))
	reloaded, err := providers.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Roles)
}
