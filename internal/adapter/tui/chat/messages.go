// Package chat implements the terminal chat window of the portfolio
// assistant.
package chat

import "folio-assistant/internal/domain"

// ReplyMsg carries the outcome of one send back to the model.
type ReplyMsg struct {
	Call     domain.ToolCall
	Err      error    // send error; the transcript is untouched when IsIgnoredSend
	ExecErr  error    // tool execution error, shown but never persisted
	Effects  []Effect // side effects recorded while executing Call
	Messages []domain.Message
}

// ResetMsg reports a finished /reset.
type ResetMsg struct {
	Messages []domain.Message
	Err      error
}

// ContactMsg opens the contact card.
type ContactMsg struct{}

// QuitMsg signals the program to exit.
type QuitMsg struct{}

// StreamTickMsg drives progressive rendering of the newest reply.
type StreamTickMsg struct{}
