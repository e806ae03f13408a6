package assistant

import "folio-assistant/internal/domain"

// query is the input every matcher sees: normalized text plus the knowledge
// snapshot and calendar year fixed for one classification.
type query struct {
	text string
	kb   *domain.KnowledgeBase
	year int
}

// matcher returns nil when it does not fire.
type matcher func(q query) domain.ToolCall

// answer is an informational matcher; ok is false when it does not fire.
type answer func(q query) (text string, ok bool)

// asMatcher lifts an answer into the matcher chain as a TextReply.
func asMatcher(a answer) matcher {
	return func(q query) domain.ToolCall {
		if text, ok := a(q); ok {
			return domain.TextReply{Text: text}
		}
		return nil
	}
}
