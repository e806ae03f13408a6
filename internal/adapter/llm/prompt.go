package llm

import (
	"encoding/json"
	"fmt"

	"folio-assistant/internal/domain"
)

// systemPrompt instructs the model to answer with a single ToolCall object.
const systemPrompt = `You are a helpful portfolio assistant for the site owner. Be brief, friendly, and accurate.
You can either reply with text or request a UI action (tool).
When you want an action, output strict JSON only in one of these shapes:
{"type":"tool","name":"open_contact","args":{}}
{"type":"tool","name":"navigate","args":{"page":"home|projects|about|resume"}}
{"type":"tool","name":"scroll_to","args":{"id":"section-id"}}
{"type":"tool","name":"filter_projects","args":{"tag":"react"}}
{"type":"tool","name":"toggle_theme","args":{"mode":"light|dark|system"}}
Otherwise, reply with {"type":"text","text":"..."}.
Never include extra keys. Never include markdown, only JSON.`

const closingInstruction = "Respond strictly with a single JSON object as specified."

// Context caps keep the prompt small.
const (
	maxContextProjects   = 6
	maxContextSkills     = 12
	maxContextExperience = 5
)

type projectSummary struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

type experienceSummary struct {
	Role    string `json:"role"`
	Company string `json:"company"`
	Period  string `json:"period"`
}

type resumeSummary struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

type promptContext struct {
	Proj        []projectSummary    `json:"proj"`
	SkillGroups []string            `json:"skillGroups"`
	Exp         []experienceSummary `json:"exp"`
	Res         resumeSummary       `json:"res"`
}

// summarizeContext condenses the knowledge base into the prompt context.
func summarizeContext(kb *domain.KnowledgeBase) promptContext {
	pc := promptContext{
		Proj:        []projectSummary{},
		SkillGroups: []string{},
		Exp:         []experienceSummary{},
		Res:         resumeSummary{Highlights: []string{}},
	}
	if kb == nil {
		return pc
	}

	for _, p := range kb.Projects {
		if len(pc.Proj) == maxContextProjects {
			break
		}
		tags := p.Technologies
		if tags == nil {
			tags = []string{}
		}
		pc.Proj = append(pc.Proj, projectSummary{Name: p.Name, Summary: p.Description, Tags: tags})
	}

skills:
	for _, g := range kb.Skills {
		for _, s := range g.Skills {
			if len(pc.SkillGroups) == maxContextSkills {
				break skills
			}
			pc.SkillGroups = append(pc.SkillGroups, s)
		}
	}

	for _, e := range kb.Experience {
		if len(pc.Exp) == maxContextExperience {
			break
		}
		pc.Exp = append(pc.Exp, experienceSummary{Role: e.Title, Company: e.Organisation, Period: e.Date})
	}
	return pc
}

// buildPrompt assembles the model input: instructions, context, the
// conversation, and a closing reminder. Every instruction is sent as a user
// turn.
func buildPrompt(kb *domain.KnowledgeBase, history []domain.Message) ([]domain.Message, error) {
	ctxJSON, err := json.Marshal(summarizeContext(kb))
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	msgs := make([]domain.Message, 0, len(history)+3)
	msgs = append(msgs,
		domain.UserMessage(systemPrompt),
		domain.UserMessage("Context: "+string(ctxJSON)),
	)
	for _, m := range history {
		role := domain.RoleUser
		if m.Role == domain.RoleAssistant {
			role = domain.RoleAssistant
		}
		msgs = append(msgs, domain.Message{Role: role, Content: m.Content})
	}
	msgs = append(msgs, domain.UserMessage(closingInstruction))
	return msgs, nil
}
