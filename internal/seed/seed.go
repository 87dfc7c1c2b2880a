// Package seed 初始化权限目录、内置角色与可选的初始数据；每一步都可重复执行
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/rbac"
	"go-gin-rbac-posts/pkg/utils"
)

// Admin 可选的初始管理员账号
type Admin struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type Options struct {
	Admin *Admin
	Posts bool
}

// Run 在一个事务里完成全部种子数据
func Run(ctx context.Context, db *gorm.DB, log *zap.Logger, opt Options) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms, err := permissions(tx)
		if err != nil {
			return err
		}
		if err := reservedRole(tx, perms); err != nil {
			return err
		}
		byName := make(map[rbac.Permission]domain.Permission, len(perms))
		for _, p := range perms {
			byName[rbac.Permission(p.Name)] = p
		}
		pick := func(list ...rbac.Permission) []domain.Permission {
			out := make([]domain.Permission, 0, len(list))
			for _, p := range list {
				out = append(out, byName[p])
			}
			return out
		}
		defaults := map[string][]domain.Permission{
			domain.KindAdmin.DefaultRole():     pick(rbac.PostPermissions()...),
			domain.KindProvider.DefaultRole():  pick(rbac.ViewPosts, rbac.ViewPostByID),
			domain.KindApplicant.DefaultRole(): pick(rbac.ViewPosts, rbac.ViewPostByID),
		}
		for _, name := range []string{domain.KindAdmin.DefaultRole(), domain.KindProvider.DefaultRole(), domain.KindApplicant.DefaultRole()} {
			if err := role(tx, name, defaults[name]); err != nil {
				return err
			}
		}
		if opt.Admin != nil && opt.Admin.Phone != "" {
			if err := admin(tx, *opt.Admin); err != nil {
				return err
			}
			log.Info("seed admin ready", zap.String("phone", opt.Admin.Phone))
		}
		if opt.Posts {
			n, err := demoPosts(tx)
			if err != nil {
				return err
			}
			log.Info("seed posts done", zap.Int("created", n))
		}
		log.Info("seed done", zap.Int("permissions", len(perms)))
		return nil
	})
}

func permissions(tx *gorm.DB) ([]domain.Permission, error) {
	out := make([]domain.Permission, 0, len(rbac.All()))
	for _, p := range rbac.All() {
		var m domain.Permission
		if err := tx.Where(domain.Permission{Name: p.String()}).FirstOrCreate(&m).Error; err != nil {
			return nil, fmt.Errorf("seed permission %q: %w", p, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// reservedRole 超级管理员必须是 1 号角色，只能在空表上创建
func reservedRole(tx *gorm.DB, perms []domain.Permission) error {
	var r domain.Role
	err := tx.Where("id = ?", domain.ReservedRoleID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var n int64
		if err := tx.Model(&domain.Role{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("seed reserved role: roles table is not empty but role %d is missing", domain.ReservedRoleID)
		}
		r = domain.Role{Name: domain.ReservedRoleName}
		if err := tx.Omit("Permissions").Create(&r).Error; err != nil {
			return fmt.Errorf("seed reserved role: %w", err)
		}
		if r.ID != domain.ReservedRoleID {
			return fmt.Errorf("seed reserved role: got id %d, want %d", r.ID, domain.ReservedRoleID)
		}
	} else if err != nil {
		return err
	}
	return tx.Model(&r).Association("Permissions").Replace(perms)
}

func role(tx *gorm.DB, name string, perms []domain.Permission) error {
	var r domain.Role
	if err := tx.Where(domain.Role{Name: name}).FirstOrCreate(&r).Error; err != nil {
		return fmt.Errorf("seed role %q: %w", name, err)
	}
	if len(perms) == 0 {
		return nil
	}
	return tx.Model(&r).Association("Permissions").Replace(perms)
}

func admin(tx *gorm.DB, a Admin) error {
	var u domain.User
	err := tx.Where("phone = ?", a.Phone).First(&u).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := utils.HashPassword(a.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	u = domain.User{Account: domain.Account{
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		PasswordHash: hash,
	}}
	if err := tx.Omit("Roles").Create(&u).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	var super domain.Role
	if err := tx.Where("id = ?", domain.ReservedRoleID).First(&super).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return tx.Model(&u).Association("Roles").Replace(&super)
}
