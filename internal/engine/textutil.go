package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// User-Agent used for API-style requests.
const UserAgentBot = "GoThread/1.0"

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags, unescapes entities and trims whitespace.
// Caption text is often double-escaped (&amp;#39;), so entities are
// unescaped until stable.
func CleanHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	for i := 0; i < 2 && strings.Contains(s, "&"); i++ {
		s = html.UnescapeString(s)
	}
	return strings.TrimSpace(s)
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
