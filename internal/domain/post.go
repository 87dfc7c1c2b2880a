package domain

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

const (
	PostInactive = 0
	PostActive   = 1
)

// Post 可翻译、可软删（归档）的文章
type Post struct {
	ID           uint              `gorm:"primaryKey"`
	Status       int               `gorm:"not null;default:0"`
	Translations []PostTranslation `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Post) TableName() string { return "posts" }

type PostTranslation struct {
	ID     uint   `gorm:"primaryKey"`
	PostID uint   `gorm:"uniqueIndex:idx_post_locale;not null"`
	Locale string `gorm:"uniqueIndex:idx_post_locale;size:8;not null"`
	Title  string `gorm:"size:100;index;not null"`
	Body   string `gorm:"type:text;not null"`
}

func (PostTranslation) TableName() string { return "post_translations" }

// Archived 是否已归档
func (p *Post) Archived() bool { return p.DeletedAt.Valid }

// Translation 取指定语言
func (p *Post) Translation(locale string) (PostTranslation, bool) {
	for _, t := range p.Translations {
		if t.Locale == locale {
			return t, true
		}
	}
	return PostTranslation{}, false
}

// SetTranslation 合并写入；空字符串表示该字段不改
func (p *Post) SetTranslation(locale, title, body string) {
	for i := range p.Translations {
		if p.Translations[i].Locale == locale {
			if title != "" {
				p.Translations[i].Title = title
			}
			if body != "" {
				p.Translations[i].Body = body
			}
			return
		}
	}
	p.Translations = append(p.Translations, PostTranslation{PostID: p.ID, Locale: locale, Title: title, Body: body})
	sort.Slice(p.Translations, func(i, j int) bool { return p.Translations[i].Locale < p.Translations[j].Locale })
}
