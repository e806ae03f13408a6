package domain

import "context"

// Classifier maps a chat history to the assistant's next ToolCall.
type Classifier interface {
	Classify(ctx context.Context, history []Message) (ToolCall, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, history []Message) (ToolCall, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, history []Message) (ToolCall, error) {
	return f(ctx, history)
}
