package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/seed"
	"go-gin-rbac-posts/internal/testutil"
	"go-gin-rbac-posts/pkg/utils"
)

func TestRunIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	opt := seed.Options{
		Admin: &seed.Admin{Name: "Root", Email: "root@example.com", Phone: "01000000000", Password: "secret123"},
		Posts: true,
	}
	require.NoError(t, seed.Run(ctx, db, zap.NewNop(), opt))
	require.NoError(t, seed.Run(ctx, db, zap.NewNop(), opt))

	var perms, roles, users, posts int64
	require.NoError(t, db.Model(&domain.Permission{}).Count(&perms).Error)
	require.NoError(t, db.Model(&domain.Role{}).Count(&roles).Error)
	require.NoError(t, db.Model(&domain.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&domain.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(13), perms)
	assert.Equal(t, int64(4), roles)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(10), posts)

	var super domain.Role
	require.NoError(t, db.Preload("Permissions").First(&super, domain.ReservedRoleID).Error)
	assert.Equal(t, domain.ReservedRoleName, super.Name)
	assert.Len(t, super.Permissions, 13)

	var admin domain.Role
	require.NoError(t, db.Preload("Permissions").Where("name = ?", "Admin").First(&admin).Error)
	assert.Len(t, admin.Permissions, 8)

	var u domain.User
	require.NoError(t, db.Preload("Roles").Where("phone = ?", "01000000000").First(&u).Error)
	require.Len(t, u.Roles, 1)
	assert.Equal(t, domain.ReservedRoleID, u.Roles[0].ID)
	assert.True(t, utils.CheckPassword("secret123", u.PasswordHash))
}

func TestRunRefusesMisplacedReservedRole(t *testing.T) {
	db := testutil.DB(t)
	require.NoError(t, db.Create(&domain.Role{Name: "Squatter"}).Error)
	require.NoError(t, db.Create(&domain.Role{Name: "Other"}).Error)
	require.NoError(t, db.Where("name = ?", "Squatter").Delete(&domain.Role{}).Error)

	err := seed.Run(context.Background(), db, zap.NewNop(), seed.Options{})
	assert.Error(t, err)
}
