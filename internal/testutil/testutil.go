// Package testutil 测试用的一次性 SQLite 库与 Redis
package testutil

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-gin-rbac-posts/internal/core/database"
	"go-gin-rbac-posts/internal/repo"
	"go-gin-rbac-posts/internal/seed"
	"go-gin-rbac-posts/pkg/utils"
)

func init() { utils.PasswordCost = bcrypt.MinCost }

// DB 每个测试独立的内存库，已迁移
func DB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))
	return db
}

// SeededDB 权限目录 + 内置角色（不含管理员账号）
func SeededDB(t testing.TB) *gorm.DB {
	t.Helper()
	db := DB(t)
	require.NoError(t, seed.Run(context.Background(), db, zap.NewNop(), seed.Options{}))
	return db
}

func Redis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}
