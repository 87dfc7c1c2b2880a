package i18n

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// RequestLocale 纯字符串输入的占位 key，Bind 时替换为请求语言
const RequestLocale = "*"

// Text 可翻译字段：既接受 "Hello"，也接受 {"en":"Hello","ar":"مرحبا"}
type Text map[string]string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text{RequestLocale: s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("must be a string or an object of locale to string: %w", err)
	}
	out := make(Text, len(m))
	for k, v := range m {
		out[normalize(k)] = v
	}
	*t = out
	return nil
}

// Bind 把纯字符串输入落到请求语言上
func (t Text) Bind(locale string) Text {
	if t == nil {
		return nil
	}
	out := make(Text, len(t))
	for k, v := range t {
		if k == RequestLocale {
			k = locale
		}
		out[k] = v
	}
	return out
}

// Locales 排序后的语言列表
func (t Text) Locales() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
