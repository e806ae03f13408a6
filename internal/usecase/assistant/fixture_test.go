package assistant

import (
	"time"

	"folio-assistant/internal/domain"
)

func testKnowledge() *domain.KnowledgeBase {
	return &domain.KnowledgeBase{
		Site: domain.SiteMetadata{
			Author:      "Prasanna Loganathan",
			Description: "AI Agent Developer",
			Email:       "hello@example.com",
			GitHub:      "https://github.com/example",
			LinkedIn:    "https://www.linkedin.com/in/example",
			SiteURL:     "https://example.com",
			ResumeFile:  "Prasanna_Loganathan.pdf",
		},
		Projects: []domain.Project{
			{Name: "Personal Portfolio Website", Category: "Web Development",
				Description:  "A personal portfolio website is a digital platform that showcases an individual's skills, experiences, projects, and achievements. It serves as an online resume.",
				Technologies: []string{"React", "Next.js", "GraphQL"}},
			{Name: "3D environments building", Category: "3D Modeling",
				Description:  "3D World Building is a project that focuses on creating immersive 3D environments.",
				Technologies: []string{"Blender", "Unity"}},
			{Name: "AI agent (chatbot)", Category: "AI Agent",
				Description:  "An AI agent (chatbot) is a software application that simulates conversations.",
				Technologies: []string{"Python", "LangChain"}},
			{Name: "2D Game Project", Category: "Game Development",
				Description:  "A 2D game project with two-dimensional graphics.",
				Technologies: []string{"Unity", "C#"}},
			{Name: "Retro Arcade", Category: "Game Development",
				Description:  "A small arcade game.",
				Technologies: []string{"Godot"}},
		},
		Skills: []domain.SkillGroup{
			{Section: "Fullstack & Databases", Skills: []string{"React", "Nextjs", "Nodejs", "FastAPI", "MongoDB", "MySql"}},
			{Section: "AI/ML", Skills: []string{"OpenAI", "LLaMa AI", "Prompt Engineering", "LangChain"}},
			{Section: "DevOps", Skills: []string{"Docker", "GitHub Actions", "API Gateway"}},
			{Section: "Languages", Skills: []string{"Javascript", "Java", "Python"}},
		},
		Experience: []domain.ExperienceEntry{
			{Title: "Game Asset Management Developer", Organisation: "ALT DEV.", Date: "2024 - 2025"},
			{Title: "AI Agent Developer", Organisation: "StudySense AI.", Date: "2025 - Present"},
		},
		Resume: domain.ResumeData{
			SkillGroups: []domain.SkillGroup{
				{Section: "Languages & Databases", Skills: []string{"Python", "Java", "JavaScript", "Dart", "MongoDB"}},
			},
		},
	}
}

func frozenAt(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC) }
}

func newTestEngine() *Engine {
	return NewEngine(domain.StaticKnowledge(testKnowledge()), WithClock(frozenAt(2026)))
}

func userSays(text string) []domain.Message {
	return []domain.Message{domain.AssistantMessage("welcome"), domain.UserMessage(text)}
}
