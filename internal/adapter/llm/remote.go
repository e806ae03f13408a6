package llm

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/config"
	"folio-assistant/internal/infra/tracer"
)

// RemoteAssistant classifies a conversation by asking an LLM provider for a
// single ToolCall object. It implements domain.Classifier.
type RemoteAssistant struct {
	provider    domain.LLMProvider
	knowledge   domain.KnowledgeSource
	parser      *ReplyParser
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

var _ domain.Classifier = (*RemoteAssistant)(nil)

// NewRemoteAssistant creates a RemoteAssistant over provider.
func NewRemoteAssistant(provider domain.LLMProvider, knowledge domain.KnowledgeSource, cfg config.LLMConfig, logger *slog.Logger) (*RemoteAssistant, error) {
	if provider == nil {
		return nil, domain.ErrRemoteDisabled
	}
	parser, err := NewReplyParser()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteAssistant{
		provider:    provider,
		knowledge:   knowledge,
		parser:      parser,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Classify implements domain.Classifier. Provider failures are returned as
// errors; unusable model output degrades to a TextReply.
func (r *RemoteAssistant) Classify(ctx context.Context, history []domain.Message) (domain.ToolCall, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.remote",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", r.provider.Name()),
			tracer.IntAttr("assistant.history_len", len(history)),
		),
	)
	defer span.End()

	if len(history) == 0 {
		tracer.RecordError(span, domain.ErrInvalidInput)
		return nil, domain.NewDomainError("llm.RemoteAssistant.Classify", domain.ErrInvalidInput, "empty history")
	}

	var kb *domain.KnowledgeBase
	if r.knowledge != nil {
		kb = r.knowledge.Snapshot()
	}
	msgs, err := buildPrompt(kb, history)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	resp, err := r.provider.Chat(ctx, domain.ChatRequest{
		Messages:    msgs,
		MaxTokens:   r.maxTokens,
		Temperature: r.temperature,
		JSONOutput:  true,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("remote assistant: %w", err)
	}

	tc, ok := r.parser.Parse(resp.Message.Content)
	if !ok {
		r.logger.Debug("remote reply was not a tool call, using text", "provider", r.provider.Name())
	}
	span.SetAttributes(tracer.BoolAttr("assistant.structured", ok))
	tracer.SetOK(span)
	return tc, nil
}
