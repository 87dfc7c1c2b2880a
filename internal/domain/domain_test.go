package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTranslationMerges(t *testing.T) {
	p := &Post{ID: 7}
	p.SetTranslation("en", "Hello", "World")
	p.SetTranslation("ar", "مرحبا", "عالم")
	require.Len(t, p.Translations, 2)
	assert.Equal(t, "ar", p.Translations[0].Locale, "kept sorted by locale")
	assert.Equal(t, uint(7), p.Translations[1].PostID)

	// 空字符串不覆盖
	p.SetTranslation("en", "", "Changed")
	en, ok := p.Translation("en")
	require.True(t, ok)
	assert.Equal(t, "Hello", en.Title)
	assert.Equal(t, "Changed", en.Body)

	_, ok = p.Translation("fr")
	assert.False(t, ok)
	assert.False(t, p.Archived())
}

func TestPermissionNamesUnion(t *testing.T) {
	a := &Applicant{Roles: []Role{
		{Name: "B", Permissions: []Permission{{Name: "View Posts"}, {Name: "Add Post"}}},
		{Name: "A", Permissions: []Permission{{Name: "View Posts"}}},
	}}
	assert.Equal(t, []string{"Add Post", "View Posts"}, a.PermissionNames())
	assert.Equal(t, []string{"A", "B"}, a.RoleNames())
	assert.Equal(t, []string{}, (&Provider{}).PermissionNames())
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("name", "The name field is required.")
	v.Add("email", "The email has already been taken.")
	err := v.OrNil()
	require.Error(t, err)

	var target *ValidationError
	require.True(t, errors.As(err, &target))
	assert.Len(t, target.Fields, 2)
	assert.Equal(t, "validation failed: email: The email has already been taken.; name: The name field is required.", err.Error())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "Admin", KindAdmin.DefaultRole())
	assert.Equal(t, "Provider", KindProvider.DefaultRole())
	assert.Equal(t, "Applicant", KindApplicant.DefaultRole())
	assert.Equal(t, "User", KindAdmin.Label())
}
