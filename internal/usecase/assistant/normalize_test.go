package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Hello!", "hello"},
		{"Show   React\tprojects.", "show react projects"},
		{"What's your e-mail?", "what s your e mail"},
		{"Next.js + C#", "next js c"},
		{"Café ✨ time", "caf time"},
		{"line\nbreak", "line break"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := "  Switch to DARK mode, please!!  "
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "ai", firstToken("AI agent (chatbot)"))
	assert.Equal(t, "", firstToken("   "))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "—é", truncateRunes("—éx", 2))
}
