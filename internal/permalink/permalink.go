package permalink

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// TrimSlash 去掉单个路径段首尾的 "/"
func TrimSlash(segment string) string {
	return strings.Trim(segment, "/")
}

// CleanSlug normalizes a raw slug coming from frontmatter or a source
// path: keeps only the last path segment, drops a leading "NNN." ordering
// prefix, then slugifies what is left. Safe on empty input.
func CleanSlug(raw string) string {
	s := TrimSlash(strings.TrimSpace(raw))
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	s = stripOrderPrefix(s)
	return slugify(s)
}

// "003.my-song" -> "my-song"
func stripOrderPrefix(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && s[i] == '.' {
		return s[i+1:]
	}
	return s
}

// Vars 是模板里可替换的全部字段
type Vars struct {
	Slug     string
	ID       string
	Category string
	Date     time.Time
}

// Generate expands a permalink pattern ("%year%/%month%/%slug%") with the
// entry's fields, then rejoins the segments so the result is a clean
// relative path with no empty or slash-wrapped pieces.
func Generate(pattern string, v Vars) string {
	r := strings.NewReplacer(
		"%slug%", v.Slug,
		"%id%", v.ID,
		"%category%", v.Category,
		"%year%", fmt.Sprintf("%04d", v.Date.Year()),
		"%month%", fmt.Sprintf("%02d", int(v.Date.Month())),
		"%day%", fmt.Sprintf("%02d", v.Date.Day()),
		"%hour%", fmt.Sprintf("%02d", v.Date.Hour()),
		"%minute%", fmt.Sprintf("%02d", v.Date.Minute()),
		"%second%", fmt.Sprintf("%02d", v.Date.Second()),
	)
	expanded := r.Replace(pattern)

	parts := strings.Split(expanded, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = TrimSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}

func slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var out []rune
	lastDash := false

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if 'A' <= r && r <= 'Z' {
				r = r + ('a' - 'A')
			}
			out = append(out, r)
			lastDash = false
		default:
			// 空格、下划线、点等一律折叠成单个 "-"
			if !lastDash && len(out) > 0 {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
