package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Clean(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"script stripped", `<p>hello</p><script>alert(1)</script>`, `<p>hello</p>`},
		{"event handler stripped", `<a href="https://example.com" onclick="x()">link</a>`, `<a href="https://example.com" rel="nofollow">link</a>`},
		{"plain text untouched", "just text", "just text"},
		{"basic markup kept", "<p><strong>bold</strong> and <em>italic</em></p>", "<p><strong>bold</strong> and <em>italic</em></p>"},
		{"whitespace trimmed", "  <p>x</p>\n", "<p>x</p>"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Clean(tt.input))
		})
	}
}
