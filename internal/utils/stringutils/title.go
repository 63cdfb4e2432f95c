package stringutils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	urlPattern        = regexp.MustCompile(`(?i)(https?://|ftp://|www\.)[^\s]+`)
	markdownLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeTitleContent strips URLs, markdown links and special characters so
// the remainder can serve as a chat title.
func SanitizeTitleContent(content string) string {
	content = urlPattern.ReplaceAllString(content, "")
	content = markdownLink.ReplaceAllString(content, "$1")

	var result strings.Builder
	for _, r := range content {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) ||
			r == '.' || r == ',' || r == '!' || r == '?' || r == '-' || r == '\'' {
			result.WriteRune(r)
		}
	}

	content = multiSpacePattern.ReplaceAllString(result.String(), " ")
	content = strings.TrimSpace(content)
	return strings.TrimRight(content, " .,!?-'")
}

// TruncateTitle caps a title at maxLen, preferring a word boundary. The
// ellipsis counts against maxLen.
func TruncateTitle(title string, maxLen int) string {
	if len(title) <= maxLen {
		return title
	}

	ellipsis := "..."
	contentLimit := maxLen - len(ellipsis)
	if contentLimit < 0 {
		contentLimit = 0
	}

	truncated := title[:contentLimit]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > contentLimit/2 {
		truncated = strings.TrimRight(truncated[:lastSpace], " ")
	}

	return truncated + ellipsis
}

// GenerateTitle produces a clean, truncated title from message content.
// Empty output means the content had nothing usable.
func GenerateTitle(content string, maxLen int) string {
	sanitized := SanitizeTitleContent(content)
	if sanitized == "" {
		return ""
	}
	return TruncateTitle(sanitized, maxLen)
}
