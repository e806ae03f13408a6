package domain

import (
	"errors"
	"fmt"
)

// Category sentinels.
var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrProviderError = fmt.Errorf("provider error")
)

// Sentinel errors for the domain layer.
var (
	ErrEmptyMessage    = fmt.Errorf("message is empty")
	ErrSessionBusy     = fmt.Errorf("session is already sending")
	ErrClassification  = fmt.Errorf("classification failed")
	ErrSessionNotFound = fmt.Errorf("session not found")
	ErrKeyNotFound     = fmt.Errorf("key not found: %w", ErrNotFound)
	ErrStore           = fmt.Errorf("store operation failed")
	ErrKnowledgeLoad   = fmt.Errorf("failed to load knowledge base")
	ErrConfigLoad      = fmt.Errorf("failed to load configuration")
	ErrDecryption      = fmt.Errorf("decryption failed")
	ErrEncryption      = fmt.Errorf("encryption operation failed")
	ErrUnknownTool     = fmt.Errorf("unknown tool")
	ErrMalformedCall   = fmt.Errorf("malformed tool call")

	// Gateway / RPC errors.
	ErrRPCMethodNotFound = fmt.Errorf("rpc method not found")
	ErrRPCInvalidPayload = fmt.Errorf("rpc payload invalid")
	ErrGatewayAuthFailed = fmt.Errorf("gateway: %w", ErrAuthInvalid)

	// Resilience errors.
	ErrRateLimit        = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid      = fmt.Errorf("authentication failed")
	ErrRemoteDisabled   = fmt.Errorf("remote assistant not configured")
	ErrContextOverflow  = fmt.Errorf("context window exceeded")
	ErrProviderNotFound = fmt.Errorf("llm provider not found")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "ChatSession.Send")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryableError reports whether err is a transient error that may succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrContextOverflow)
}

// IsIgnoredSend reports whether err marks a send that was rejected by the
// session guard without touching the transcript.
func IsIgnoredSend(err error) bool {
	return errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrSessionBusy)
}
