package stringutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitleContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain text", "How do I cook rice", "How do I cook rice"},
		{"strips url", "check https://example.com/page now", "check now"},
		{"markdown link keeps text", "see [the docs](https://docs.example.com)", "see the docs"},
		{"collapses whitespace", "a   b\t\nc", "a b c"},
		{"trims trailing punctuation", "hello!!!", "hello"},
		{"only symbols", "@#$%^&*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitleContent(tt.content))
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "short", TruncateTitle("short", 60))

	long := "tell me about the history of distributed consensus algorithms"
	got := TruncateTitle(long, 30)
	assert.LessOrEqual(t, len(got), 30)
	assert.True(t, got[len(got)-3:] == "...")
	// cut lands on a word boundary
	assert.NotContains(t, got, "consens")
}

func TestGenerateTitle(t *testing.T) {
	assert.Equal(t, "", GenerateTitle("   ", 60))
	assert.Equal(t, "Hello world", GenerateTitle("Hello world!", 60))
}
