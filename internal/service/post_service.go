package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go-gin-rbac-posts/internal/domain"
	"go-gin-rbac-posts/internal/i18n"
)

const maxTitleLen = 100

type PostStore interface {
	ListActive(ctx context.Context) ([]domain.Post, error)
	ListArchived(ctx context.Context) ([]domain.Post, error)
	FindActive(ctx context.Context, id uint) (*domain.Post, error)
	FindArchived(ctx context.Context, id uint) (*domain.Post, error)
	TitleTaken(ctx context.Context, locale, title string, exceptID uint) (bool, error)
	Create(ctx context.Context, p *domain.Post) error
	Save(ctx context.Context, p *domain.Post) error
	Archive(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	ForceDelete(ctx context.Context, id uint) error
}

// PostInput Title/Body 为 nil 表示未提供；Status 为 nil 表示未提供
type PostInput struct {
	Title  i18n.Text
	Body   i18n.Text
	Status *int
}

type TranslationView struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PostView 统一输出：title/body 按请求语言解析，translations 保留全部语言
type PostView struct {
	ID           uint                       `json:"id"`
	Title        string                     `json:"title"`
	Body         string                     `json:"body"`
	Locale       string                     `json:"locale"`
	Status       int                        `json:"status"`
	Translations map[string]TranslationView `json:"translations"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
	DeletedAt    *time.Time                 `json:"deleted_at"`
}

type PostService struct {
	store   PostStore
	locales *i18n.Locales
}

func NewPostService(store PostStore, locales *i18n.Locales) *PostService {
	return &PostService{store: store, locales: locales}
}

func (s *PostService) List(ctx context.Context, lang string) ([]PostView, error) {
	posts, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(posts, lang), nil
}

func (s *PostService) ListArchived(ctx context.Context, lang string) ([]PostView, error) {
	posts, err := s.store.ListArchived(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(posts, lang), nil
}

func (s *PostService) Show(ctx context.Context, id uint, lang string) (*PostView, error) {
	p, err := s.store.FindActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(p, lang), nil
}

func (s *PostService) Create(ctx context.Context, in PostInput, lang string) (*PostView, error) {
	title, body := trimText(in.Title.Bind(lang)), trimText(in.Body.Bind(lang))

	verr := domain.NewValidationError()
	s.checkText(verr, "title", title, true, maxTitleLen)
	s.checkText(verr, "body", body, true, 0)
	s.checkStatus(verr, in.Status)
	if verr.HasErrors() {
		return nil, verr
	}
	// 每个语言标题与正文成对出现
	for _, loc := range union(title, body) {
		if title[loc] == "" {
			verr.Add("title."+loc, "The title field is required.")
		}
		if body[loc] == "" {
			verr.Add("body."+loc, "The body field is required.")
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}
	if err := s.checkUnique(ctx, verr, title, 0); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	p := &domain.Post{Status: domain.PostInactive}
	if in.Status != nil {
		p.Status = *in.Status
	}
	for _, loc := range union(title, body) {
		p.SetTranslation(loc, title[loc], body[loc])
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.view(p, lang), nil
}

// Update 只改提供的字段；翻译按语言合并
func (s *PostService) Update(ctx context.Context, id uint, in PostInput, lang string) (*PostView, error) {
	p, err := s.store.FindActive(ctx, id)
	if err != nil {
		return nil, err
	}
	title, body := trimText(in.Title.Bind(lang)), trimText(in.Body.Bind(lang))

	verr := domain.NewValidationError()
	s.checkText(verr, "title", title, false, maxTitleLen)
	s.checkText(verr, "body", body, false, 0)
	s.checkStatus(verr, in.Status)
	if verr.HasErrors() {
		return nil, verr
	}
	if err := s.checkUnique(ctx, verr, title, p.ID); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	// 新增语言必须同时给出标题和正文
	for _, loc := range union(title, body) {
		if _, ok := p.Translation(loc); ok {
			continue
		}
		if title[loc] == "" {
			verr.Add("title."+loc, "The title field is required for a new locale.")
		}
		if body[loc] == "" {
			verr.Add("body."+loc, "The body field is required for a new locale.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if in.Status != nil {
		p.Status = *in.Status
	}
	for _, loc := range union(title, body) {
		p.SetTranslation(loc, title[loc], body[loc])
	}
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return s.Show(ctx, p.ID, lang)
}

func (s *PostService) Archive(ctx context.Context, id uint, lang string) (*PostView, error) {
	if err := s.store.Archive(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.store.FindArchived(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(p, lang), nil
}

// Restore 只能恢复已归档文章；标题已被其它文章占用时拒绝
func (s *PostService) Restore(ctx context.Context, id uint, lang string) (*PostView, error) {
	p, err := s.store.FindArchived(ctx, id)
	if err != nil {
		return nil, err
	}
	title := make(i18n.Text, len(p.Translations))
	for _, t := range p.Translations {
		title[t.Locale] = t.Title
	}
	verr := domain.NewValidationError()
	if err := s.checkUnique(ctx, verr, title, p.ID); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if err := s.store.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.Show(ctx, id, lang)
}

// ForceDelete 只能删除已归档文章；未归档的文章视为不存在
func (s *PostService) ForceDelete(ctx context.Context, id uint) error {
	return s.store.ForceDelete(ctx, id)
}

func (s *PostService) checkText(verr *domain.ValidationError, field string, t i18n.Text, required bool, maxLen int) {
	if t == nil {
		if required {
			verr.Add(field, fmt.Sprintf("The %s field is required.", field))
		}
		return
	}
	if len(t) == 0 {
		verr.Add(field, fmt.Sprintf("The %s field must contain at least one locale.", field))
		return
	}
	for _, loc := range t.Locales() {
		key := field + "." + loc
		if !s.locales.IsSupported(loc) {
			verr.Add(key, fmt.Sprintf("The locale %q is not supported.", loc))
			continue
		}
		v := t[loc]
		if v == "" {
			verr.Add(key, fmt.Sprintf("The %s field is required.", field))
			continue
		}
		if maxLen > 0 && utf8.RuneCountInString(v) > maxLen {
			verr.Add(key, fmt.Sprintf("The %s must not be greater than %d characters.", field, maxLen))
		}
	}
}

func (s *PostService) checkStatus(verr *domain.ValidationError, status *int) {
	if status != nil && *status != domain.PostInactive && *status != domain.PostActive {
		verr.Add("status", "The selected status is invalid.")
	}
}

func (s *PostService) checkUnique(ctx context.Context, verr *domain.ValidationError, title i18n.Text, exceptID uint) error {
	for _, loc := range title.Locales() {
		taken, err := s.store.TitleTaken(ctx, loc, title[loc], exceptID)
		if err != nil {
			return fmt.Errorf("check title: %w", err)
		}
		if taken {
			verr.Add("title."+loc, "The title has already been taken.")
		}
	}
	return nil
}

func (s *PostService) views(posts []domain.Post, lang string) []PostView {
	out := make([]PostView, 0, len(posts))
	for i := range posts {
		out = append(out, *s.view(&posts[i], lang))
	}
	return out
}

// view 语言回退：请求语言 -> 默认语言 -> 第一个已有语言
func (s *PostService) view(p *domain.Post, lang string) *PostView {
	v := &PostView{
		ID:           p.ID,
		Status:       p.Status,
		Translations: make(map[string]TranslationView, len(p.Translations)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		v.DeletedAt = &t
	}
	for _, t := range p.Translations {
		v.Translations[t.Locale] = TranslationView{Title: t.Title, Body: t.Body}
	}
	for _, loc := range []string{lang, s.locales.Default()} {
		if t, ok := p.Translation(loc); ok {
			v.Locale, v.Title, v.Body = loc, t.Title, t.Body
			return v
		}
	}
	if len(p.Translations) > 0 {
		t := p.Translations[0]
		v.Locale, v.Title, v.Body = t.Locale, t.Title, t.Body
	}
	return v
}

func trimText(t i18n.Text) i18n.Text {
	if t == nil {
		return nil
	}
	out := make(i18n.Text, len(t))
	for k, v := range t {
		out[k] = strings.TrimSpace(v)
	}
	return out
}

func union(a, b i18n.Text) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, t := range []i18n.Text{a, b} {
		for _, loc := range t.Locales() {
			if _, ok := seen[loc]; !ok {
				seen[loc] = struct{}{}
				out = append(out, loc)
			}
		}
	}
	return out
}
