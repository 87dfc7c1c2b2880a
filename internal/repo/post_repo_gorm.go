package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-rbac-posts/internal/domain"
)

type PostRepo struct{ db *gorm.DB }

func NewPostRepo(db *gorm.DB) *PostRepo { return &PostRepo{db: db} }

func withTranslations(db *gorm.DB) *gorm.DB {
	return db.Preload("Translations", func(db *gorm.DB) *gorm.DB { return db.Order("locale") })
}

// ListActive 未归档
func (r *PostRepo) ListActive(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := withTranslations(r.db.WithContext(ctx)).Order("id").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListArchived 仅已归档
func (r *PostRepo) ListArchived(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	q := withTranslations(r.db.WithContext(ctx).Unscoped()).Where("deleted_at IS NOT NULL")
	if err := q.Order("id").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepo) FindActive(ctx context.Context, id uint) (*domain.Post, error) {
	return r.first(withTranslations(r.db.WithContext(ctx)).Where("id = ?", id))
}

func (r *PostRepo) FindArchived(ctx context.Context, id uint) (*domain.Post, error) {
	return r.first(withTranslations(r.db.WithContext(ctx).Unscoped()).Where("id = ? AND deleted_at IS NOT NULL", id))
}

func (r *PostRepo) first(q *gorm.DB) (*domain.Post, error) {
	var p domain.Post
	err := q.First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TitleTaken 同语言下未归档文章标题是否已存在；exceptID 为 0 时不排除
func (r *PostRepo) TitleTaken(ctx context.Context, locale, title string, exceptID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).
		Table("post_translations AS t").
		Joins("JOIN posts AS p ON p.id = t.post_id").
		Where("p.deleted_at IS NULL AND t.locale = ? AND t.title = ?", locale, title)
	if exceptID != 0 {
		q = q.Where("p.id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Translations").Create(p).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		for i := range p.Translations {
			p.Translations[i].PostID = p.ID
		}
		if len(p.Translations) > 0 {
			if err := tx.Create(&p.Translations).Error; err != nil {
				return fmt.Errorf("create translations: %w", err)
			}
		}
		return nil
	})
}

// Save 更新状态 + 按 (post_id, locale) upsert 翻译
func (r *PostRepo) Save(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Post{}).Where("id = ?", p.ID).Update("status", p.Status).Error; err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		if len(p.Translations) == 0 {
			return nil
		}
		// 不带主键插入，冲突落在 (post_id, locale) 上
		rows := make([]domain.PostTranslation, 0, len(p.Translations))
		for _, t := range p.Translations {
			rows = append(rows, domain.PostTranslation{PostID: p.ID, Locale: t.Locale, Title: t.Title, Body: t.Body})
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "locale"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "body"}),
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("upsert translations: %w", err)
		}
		return nil
	})
}

// Archive 软删
func (r *PostRepo) Archive(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Restore 只作用于已归档文章
func (r *PostRepo) Restore(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&domain.Post{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ForceDelete 只作用于已归档文章，连同翻译一起物理删除
func (r *PostRepo) ForceDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("id = ? AND deleted_at IS NOT NULL", id).Delete(&domain.Post{})
		if res.Error != nil {
			return fmt.Errorf("delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.PostTranslation{}).Error; err != nil {
			return fmt.Errorf("delete translations: %w", err)
		}
		return nil
	})
}
