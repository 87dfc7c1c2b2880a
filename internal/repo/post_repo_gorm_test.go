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

func newPost(title string) *domain.Post {
	p := &domain.Post{Status: domain.PostActive}
	p.SetTranslation("en", title, "body of "+title)
	return p
}

func TestPostRepoArchiveRestoreForceDelete(t *testing.T) {
	db := testutil.DB(t)
	r := repo.NewPostRepo(db)
	ctx := context.Background()

	p := newPost("First")
	require.NoError(t, r.Create(ctx, p))
	require.NotZero(t, p.ID)
	require.NotZero(t, p.Translations[0].ID)

	active, err := r.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "First", active[0].Translations[0].Title)

	// 未归档时不可强删 / 恢复
	assert.ErrorIs(t, r.ForceDelete(ctx, p.ID), domain.ErrNotFound)
	assert.ErrorIs(t, r.Restore(ctx, p.ID), domain.ErrNotFound)

	require.NoError(t, r.Archive(ctx, p.ID))
	assert.ErrorIs(t, r.Archive(ctx, p.ID), domain.ErrNotFound)
	_, err = r.FindActive(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	archived, err := r.ListArchived(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.True(t, archived[0].Archived())

	require.NoError(t, r.Restore(ctx, p.ID))
	_, err = r.FindActive(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, r.Archive(ctx, p.ID))
	require.NoError(t, r.ForceDelete(ctx, p.ID))
	_, err = r.FindArchived(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var n int64
	require.NoError(t, db.Model(&domain.PostTranslation{}).Where("post_id = ?", p.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPostRepoSaveUpsertsTranslations(t *testing.T) {
	db := testutil.DB(t)
	r := repo.NewPostRepo(db)
	ctx := context.Background()

	p := newPost("Hello")
	require.NoError(t, r.Create(ctx, p))

	p.Status = domain.PostInactive
	p.SetTranslation("en", "Hello again", "")
	p.SetTranslation("ar", "مرحبا", "نص")
	require.NoError(t, r.Save(ctx, p))

	got, err := r.FindActive(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostInactive, got.Status)
	require.Len(t, got.Translations, 2)
	en, _ := got.Translation("en")
	assert.Equal(t, "Hello again", en.Title)
	assert.Equal(t, "body of Hello", en.Body)
	ar, _ := got.Translation("ar")
	assert.Equal(t, "مرحبا", ar.Title)
}

func TestPostRepoTitleTakenIgnoresArchived(t *testing.T) {
	db := testutil.DB(t)
	r := repo.NewPostRepo(db)
	ctx := context.Background()

	p := newPost("Same")
	require.NoError(t, r.Create(ctx, p))

	taken, err := r.TitleTaken(ctx, "en", "Same", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = r.TitleTaken(ctx, "en", "Same", p.ID)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = r.TitleTaken(ctx, "ar", "Same", 0)
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, r.Archive(ctx, p.ID))
	taken, err = r.TitleTaken(ctx, "en", "Same", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}
