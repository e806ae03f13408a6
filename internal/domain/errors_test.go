package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("ChatSession.Send", ErrClassification, "engine panicked")
	want := "ChatSession.Send: engine panicked: classification failed"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("SessionManager.Get", ErrSessionNotFound, "")
	want := "SessionManager.Get: session not found"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("Store.Get", ErrKeyNotFound, "assistant_chat_v1")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Error("errors.Is should match ErrKeyNotFound")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("ErrKeyNotFound should wrap ErrNotFound")
	}
}

func TestWrapOp(t *testing.T) {
	assert.Nil(t, WrapOp("op", nil))

	err := WrapOp("Knowledge.Load", ErrKnowledgeLoad)
	assert.EqualError(t, err, "Knowledge.Load: failed to load knowledge base")
	assert.ErrorIs(t, err, ErrKnowledgeLoad)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(fmt.Errorf("gemini: %w", ErrRateLimit)))
	assert.False(t, IsRetryableError(ErrAuthInvalid))
}

func TestIsIgnoredSend(t *testing.T) {
	assert.True(t, IsIgnoredSend(ErrEmptyMessage))
	assert.True(t, IsIgnoredSend(WrapOp("send", ErrSessionBusy)))
	assert.False(t, IsIgnoredSend(ErrClassification))
	assert.False(t, IsIgnoredSend(nil))
}
