package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locales 支持的语言集合；第一个为默认语言
type Locales struct {
	supported []string
	matcher   language.Matcher
}

func NewLocales(def string, supported []string) (*Locales, error) {
	def = normalize(def)
	if def == "" {
		return nil, fmt.Errorf("default locale is empty")
	}
	list := []string{def}
	for _, s := range supported {
		s = normalize(s)
		if s != "" && s != def && !contains(list, s) {
			list = append(list, s)
		}
	}
	tags := make([]language.Tag, 0, len(list))
	for _, s := range list {
		t, err := language.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", s, err)
		}
		tags = append(tags, t)
	}
	return &Locales{supported: list, matcher: language.NewMatcher(tags)}, nil
}

func (l *Locales) Default() string { return l.supported[0] }

func (l *Locales) Supported() []string { return append([]string(nil), l.supported...) }

func (l *Locales) IsSupported(locale string) bool { return contains(l.supported, normalize(locale)) }

// Resolve 优先 ?lang=，其次 Accept-Language，最后默认语言
func (l *Locales) Resolve(query, acceptLanguage string) string {
	if q := strings.TrimSpace(query); q != "" {
		if t, err := language.Parse(q); err == nil {
			if loc, ok := l.match(t); ok {
				return loc
			}
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			if loc, ok := l.match(tags...); ok {
				return loc
			}
		}
	}
	return l.Default()
}

func (l *Locales) match(tags ...language.Tag) (string, bool) {
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return l.supported[idx], true
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
