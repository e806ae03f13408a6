package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"folio-assistant/internal/domain"
)

// toolCallSchema is the wire shape a model reply must match.
const toolCallSchema = `{
  "type": "object",
  "required": ["type"],
  "anyOf": [
    {
      "properties": {
        "type": {"const": "text"},
        "text": {"type": "string"}
      },
      "required": ["type", "text"]
    },
    {
      "properties": {
        "type": {"const": "tool"},
        "name": {"type": "string", "minLength": 1},
        "args": {"type": "object"}
      },
      "required": ["type", "name"]
    }
  ]
}`

// ReplyParser turns raw model output into a ToolCall. Output that is not
// valid JSON, fails the schema, or carries bad arguments becomes a
// TextReply holding the raw text.
type ReplyParser struct {
	schema *jsonschema.Schema
}

// NewReplyParser compiles the ToolCall schema.
func NewReplyParser() (*ReplyParser, error) {
	schema, err := jsonschema.NewCompiler().Compile([]byte(toolCallSchema))
	if err != nil {
		return nil, fmt.Errorf("compile tool call schema: %w", err)
	}
	return &ReplyParser{schema: schema}, nil
}

// Parse never fails; the second value reports whether the reply was a
// well-formed ToolCall.
func (p *ReplyParser) Parse(raw string) (domain.ToolCall, bool) {
	text := strings.TrimSpace(raw)
	body := stripCodeFences(text)

	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return domain.TextReply{Text: text}, false
	}
	if err := p.validate(data); err != nil {
		return domain.TextReply{Text: text}, false
	}

	tc, err := domain.UnmarshalToolCall([]byte(body))
	if err != nil {
		return domain.TextReply{Text: text}, false
	}
	return tc, true
}

func (p *ReplyParser) validate(data any) error {
	result := p.schema.Validate(data)
	if !result.IsValid() {
		return fmt.Errorf("%w: %s", domain.ErrMalformedCall, result.Error())
	}
	return nil
}

// codeFenceRe matches markdown code fences wrapping JSON.
var codeFenceRe = regexp.MustCompile(`(?si)^` + "```" + `(?:json)?\s*(.*?)\s*` + "```" + `$`)

// stripCodeFences removes markdown code fences if the model wrapped its output.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}
