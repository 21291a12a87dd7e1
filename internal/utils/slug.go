package utils

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// Slugify 生成用于文件名的短标识，汉字转成拼音，其余非字母数字字符折叠成连字符
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true

	writeDash := func() {
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	for _, r := range name {
		switch {
		case unicode.Is(unicode.Han, r):
			syllables := pinyin.LazyConvert(string(r), nil)
			if len(syllables) == 0 {
				writeDash()
				continue
			}
			writeDash()
			b.WriteString(syllables[0])
			lastDash = false
			writeDash()
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			writeDash()
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	return slug
}
