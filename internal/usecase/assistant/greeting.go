package assistant

import (
	"strings"

	"folio-assistant/internal/domain"
)

const (
	greetingSkillCount  = 3
	greetingSkillsEmpty = "modern web and AI tools"
)

// DefaultHelp is returned when no matcher fires.
const DefaultHelp = "I can help you explore this portfolio: open the contact form, switch theme, " +
	"navigate to pages, scroll to sections, or filter projects by tech (e.g., 'show React projects'). " +
	"Would you like to see recent projects, open the resume, or contact? 🙂"

var greetingWords = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {}, "hola": {}, "hai": {}, "haii": {}, "hey there": {},
}

// Greeting returns the welcome text for kb. It names up to three skills from
// the first resume skill group.
func Greeting(kb *domain.KnowledgeBase) string {
	top := greetingSkillsEmpty
	if groups := kb.Resume.SkillGroups; len(groups) > 0 && len(groups[0].Skills) > 0 {
		skills := groups[0].Skills
		if len(skills) > greetingSkillCount {
			skills = skills[:greetingSkillCount]
		}
		top = strings.Join(skills, ", ")
	}
	return "Hi there 👋 I’m your portfolio assistant. I can help you explore projects, skills, and experience; " +
		"open the contact form; switch themes; or navigate around. I work with " + top +
		" and more. What would you like to do first? ✨"
}

// isGreeting reports whether normalized text is a bare greeting.
func isGreeting(text string) bool {
	_, ok := greetingWords[text]
	return ok
}
