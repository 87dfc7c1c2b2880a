package seed

import (
	"fmt"

	"gorm.io/gorm"

	"go-gin-rbac-posts/internal/domain"
)

var demo = []struct{ title, body string }{
	{"Introduction to Web Development", "This post covers the basics of web development..."},
	{"HTML and CSS Basics", "This post introduces HTML and CSS, the building blocks of web development..."},
	{"Getting Started with JavaScript", "JavaScript is a powerful programming language for web development..."},
	{"Introduction to PHP", "PHP is a popular server-side scripting language..."},
	{"Understanding Databases", "Databases are essential for storing data in web applications..."},
	{"Getting Started with Laravel", "Laravel is a powerful PHP framework for building web applications..."},
	{"Advanced JavaScript Concepts", "This post covers advanced topics in JavaScript..."},
	{"Building RESTful APIs", "RESTful APIs allow web applications to communicate with each other..."},
	{"Introduction to Frontend Frameworks", "Frontend frameworks like React, Vue, and Angular help build dynamic user interfaces..."},
	{"Deploying Web Applications", "Deploying web applications involves moving your code to a production server..."},
}

// demoPosts 英文示例文章，按标题去重
func demoPosts(tx *gorm.DB) (int, error) {
	created := 0
	for _, d := range demo {
		var n int64
		if err := tx.Model(&domain.PostTranslation{}).Where("locale = ? AND title = ?", "en", d.title).Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			continue
		}
		p := domain.Post{
			Status:       domain.PostActive,
			Translations: []domain.PostTranslation{{Locale: "en", Title: d.title, Body: d.body}},
		}
		if err := tx.Create(&p).Error; err != nil {
			return created, fmt.Errorf("seed post %q: %w", d.title, err)
		}
		created++
	}
	return created, nil
}
