package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-gin-rbac-posts/internal/domain"
)

// 删除角色时需要一并清理的主体关联表
var principalRoleTables = []string{"user_roles", "provider_roles", "applicant_roles"}

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

func (r *RoleRepo) List(ctx context.Context, excludeIDs ...uint) ([]domain.Role, error) {
	var roles []domain.Role
	q := r.db.WithContext(ctx).Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if err := q.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepo) Find(ctx context.Context, id uint) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepo) FindByNames(ctx context.Context, names []string) ([]domain.Role, error) {
	var roles []domain.Role
	if len(names) == 0 {
		return roles, nil
	}
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// NameTaken exceptID 为 0 时不排除任何角色
func (r *RoleRepo) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.Role{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RoleRepo) Permissions(ctx context.Context) ([]domain.Permission, error) {
	var perms []domain.Permission
	if err := r.db.WithContext(ctx).Order("id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *RoleRepo) PermissionsByIDs(ctx context.Context, ids []uint) ([]domain.Permission, error) {
	var perms []domain.Permission
	if len(ids) == 0 {
		return perms, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// Create 建角色 + 同步权限，同一事务
func (r *RoleRepo) Create(ctx context.Context, role *domain.Role, perms []domain.Permission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Create(role).Error; err != nil {
			return fmt.Errorf("create role: %w", err)
		}
		return syncPermissions(tx, role, perms)
	})
}

// Update 改名 + 全量替换权限
func (r *RoleRepo) Update(ctx context.Context, role *domain.Role, perms []domain.Permission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// MySQL 对未变化的行 RowsAffected 为 0，存在性由 service 先行校验
		if err := tx.Model(&domain.Role{}).Where("id = ?", role.ID).Update("name", role.Name).Error; err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		return syncPermissions(tx, role, perms)
	})
}

func (r *RoleRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role := &domain.Role{ID: id}
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return fmt.Errorf("detach permissions: %w", err)
		}
		for _, table := range principalRoleTables {
			if err := tx.Exec("DELETE FROM "+table+" WHERE role_id = ?", id).Error; err != nil {
				return fmt.Errorf("detach %s: %w", table, err)
			}
		}
		res := tx.Delete(&domain.Role{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete role: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func syncPermissions(tx *gorm.DB, role *domain.Role, perms []domain.Permission) error {
	assoc := tx.Model(role).Association("Permissions")
	var err error
	if len(perms) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(perms)
	}
	if err != nil {
		return fmt.Errorf("sync permissions: %w", err)
	}
	role.Permissions = perms
	return nil
}
