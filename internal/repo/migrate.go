package repo

import (
	"gorm.io/gorm"

	"go-gin-rbac-posts/internal/domain"
)

// Models 参与自动迁移的全部模型（关联表由 many2many 自动创建）
func Models() []any {
	return []any{
		&domain.Permission{},
		&domain.Role{},
		&domain.User{},
		&domain.Provider{},
		&domain.Applicant{},
		&domain.Post{},
		&domain.PostTranslation{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
