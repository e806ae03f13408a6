// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the TUI.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"folio-assistant/internal/adapter/tui/theme"
	"folio-assistant/internal/domain"
	"folio-assistant/internal/usecase/executor"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Clipboard Unavailable"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)

	// Retryable marks transient failures where resending the same message
	// may succeed.
	Retryable bool
}

// Render formats the FriendlyError for display in the transcript.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if fe.Retryable {
		sb.WriteString("\n  This is temporary. Sending the message again shortly should work.")
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Sentinels first so errors.Is works through wrapping.
	{
		match:   is(executor.ErrClipboardUnavailable),
		produce: constantError("Clipboard Unavailable", "No system clipboard was found.", []string{"Install xclip, xsel or wl-clipboard", "Copy the address from the contact card instead"}),
	},
	{
		match:   is(domain.ErrSessionBusy),
		produce: constantError("Still Thinking", "The previous message has not been answered yet.", []string{"Wait for the reply, then send again"}),
	},
	{
		match:   is(domain.ErrRateLimit),
		produce: constantError("Rate Limited", "Too many requests were sent to the assistant.", []string{"Wait a moment before retrying"}),
	},
	{
		match:   is(domain.ErrAuthInvalid),
		produce: constantError("Authentication Failed", "The API key was rejected.", []string{"Check GEMINI_API_KEY", "Verify the key hasn't expired"}),
	},
	{
		match:   is(domain.ErrRemoteDisabled),
		produce: constantError("Remote Assistant Disabled", "No API key is configured for the remote assistant.", []string{"Set GEMINI_API_KEY", "Use assistant.fallback: local"}),
	},
	{
		match:   is(domain.ErrKnowledgeLoad),
		produce: constantError("Site Content Unavailable", "The knowledge files could not be loaded.", []string{"Check knowledge.path in config", "Validate the YAML file"}),
	},
	{
		match:   is(domain.ErrClassification),
		produce: constantError("Assistant Error", "The assistant could not answer that message.", []string{"Try rephrasing", "Ask about projects, skills or experience"}),
	},
	{
		match:   is(domain.ErrProviderError),
		produce: constantError("Provider Error", "The language model service returned an error.", []string{"Try again in a moment"}),
	},

	// Network / connectivity patterns (string matching for external errors).
	{
		match:   containsAny("connection refused", "dial tcp", "no such host"),
		produce: constantError("Connection Failed", "Could not reach the remote service.", []string{"Check your internet connection", "Verify the service URL in config"}),
	},
	{
		match:   containsAny("deadline exceeded", "timeout", "context deadline"),
		produce: constantError("Request Timed Out", "The request took too long to complete.", []string{"Check your network connection", "Increase llm.provider.resp_timeout in config"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}

	fe := FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with logger.level: debug for more details"},
		Raw:     err.Error(),
	}
	for _, p := range patterns {
		if p.match(err) {
			fe = p.produce(err)
			break
		}
	}
	fe.Retryable = domain.IsRetryableError(err)
	return fe
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}
