package assistant

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"folio-assistant/internal/domain"
	"folio-assistant/internal/infra/tracer"
)

// Engine is the local classifier. It is a pure function of the history, the
// current knowledge snapshot and the calendar year.
type Engine struct {
	source domain.KnowledgeSource
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to resolve "present" in date ranges.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine reading from source.
func NewEngine(source domain.KnowledgeSource, opts ...Option) *Engine {
	e := &Engine{source: source, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Classify maps the latest user message in history to a ToolCall. It never
// returns nil: with no match it returns DefaultHelp.
func (e *Engine) Classify(history []domain.Message) domain.ToolCall {
	q := query{
		text: Normalize(domain.LastUserContent(history)),
		kb:   e.source.Snapshot(),
		year: e.now().Year(),
	}

	if isGreeting(q.text) {
		return domain.TextReply{Text: Greeting(q.kb)}
	}
	for _, m := range toolMatchers {
		if tc := m(q); tc != nil {
			return tc
		}
	}
	for _, m := range infoMatchers {
		if tc := m(q); tc != nil {
			return tc
		}
	}
	return domain.TextReply{Text: DefaultHelp}
}

// Greeting returns the welcome text for the current snapshot.
func (e *Engine) Greeting() string {
	return Greeting(e.source.Snapshot())
}

// Local adapts Engine to domain.Classifier.
type Local struct {
	Engine *Engine
}

var _ domain.Classifier = Local{}

// Classify implements domain.Classifier. It never returns an error.
func (l Local) Classify(ctx context.Context, history []domain.Message) (domain.ToolCall, error) {
	_, span := tracer.StartSpan(ctx, "assistant.classify",
		trace.WithAttributes(tracer.IntAttr("history.len", len(history))),
	)
	defer span.End()

	tc := l.Engine.Classify(history)
	span.SetAttributes(tracer.StringAttr("result.kind", Kind(tc)))
	tracer.SetOK(span)
	return tc, nil
}

// Kind names the branch and tool of tc for logs and spans.
func Kind(tc domain.ToolCall) string {
	switch c := tc.(type) {
	case nil:
		return "none"
	case domain.TextReply:
		return "text"
	case domain.ToolAction:
		return "tool:" + string(c.Tool())
	default:
		return "unknown"
	}
}

// IsDefaultHelp reports whether tc is the fallback help reply.
func IsDefaultHelp(tc domain.ToolCall) bool {
	t, ok := tc.(domain.TextReply)
	return ok && t.Text == DefaultHelp
}
