package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-gin-rbac-posts/internal/domain"
)

// AccountRepo 三类主体共用的仓储，T 决定表与角色关联表
type AccountRepo[T any, P interface {
	*T
	domain.Principal
}] struct{ db *gorm.DB }

func NewAccountRepo[T any, P interface {
	*T
	domain.Principal
}](db *gorm.DB) *AccountRepo[T, P] {
	return &AccountRepo[T, P]{db: db}
}

// FindByLogin 手机号优先，否则按邮箱
func (r *AccountRepo[T, P]) FindByLogin(ctx context.Context, phone, email string) (P, error) {
	q := r.db.WithContext(ctx).Preload("Roles.Permissions")
	if phone != "" {
		q = q.Where("phone = ?", phone)
	} else {
		q = q.Where("email = ?", email)
	}
	return r.first(q)
}

func (r *AccountRepo[T, P]) FindByID(ctx context.Context, id uint) (P, error) {
	return r.first(r.db.WithContext(ctx).Preload("Roles.Permissions").Where("id = ?", id))
}

func (r *AccountRepo[T, P]) first(q *gorm.DB) (P, error) {
	var m T
	if err := q.First(&m).Error; err != nil {
		var zero P
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, domain.ErrNotFound
		}
		return zero, err
	}
	return P(&m), nil
}

func (r *AccountRepo[T, P]) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *AccountRepo[T, P]) PhoneTaken(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone = ?", phone)
}

func (r *AccountRepo[T, P]) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where(cond, arg).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create 建账号并分配角色，同一事务
func (r *AccountRepo[T, P]) Create(ctx context.Context, p P, roles []domain.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles").Create(p).Error; err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if len(roles) > 0 {
			if err := tx.Model(p).Association("Roles").Replace(roles); err != nil {
				return fmt.Errorf("assign roles: %w", err)
			}
		}
		return tx.Preload("Roles.Permissions").Where("id = ?", p.Base().ID).First(p).Error
	})
}
