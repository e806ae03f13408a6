package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastUserContent(t *testing.T) {
	tests := []struct {
		name    string
		history []Message
		want    string
	}{
		{"empty", nil, ""},
		{"assistant only", []Message{AssistantMessage("hi")}, ""},
		{"last user wins", []Message{
			UserMessage("first"),
			AssistantMessage("reply"),
			UserMessage("second"),
			AssistantMessage("reply 2"),
		}, "second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastUserContent(tt.history))
		})
	}
}

func TestCloneMessagesIsIndependent(t *testing.T) {
	orig := []Message{UserMessage("a")}
	cp := CloneMessages(orig)
	cp[0].Content = "b"
	assert.Equal(t, "a", orig[0].Content)
}
