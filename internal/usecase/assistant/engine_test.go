package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-assistant/internal/domain"
)

func TestClassifyGreeting(t *testing.T) {
	e := newTestEngine()
	want := domain.TextReply{Text: Greeting(testKnowledge())}

	for _, in := range []string{"hi", "Hello!", "hey there", "  HEY  ", "yo...", "haii"} {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, e.Classify(userSays(in)))
		})
	}
}

func TestGreetingText(t *testing.T) {
	got := Greeting(testKnowledge())
	assert.Equal(t, "Hi there 👋 I’m your portfolio assistant. I can help you explore projects, skills, and experience; "+
		"open the contact form; switch themes; or navigate around. I work with Python, Java, JavaScript and more. "+
		"What would you like to do first? ✨", got)

	empty := Greeting(&domain.KnowledgeBase{})
	assert.Contains(t, empty, "I work with modern web and AI tools and more.")

	assert.Equal(t, got, newTestEngine().Greeting())
}

func TestClassifyToolIntents(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		in   string
		want domain.ToolCall
	}{
		{"show react projects", domain.FilterProjects{Tag: "react"}},
		{"Filter docker work", domain.FilterProjects{Tag: "docker"}},
		{"any python projects?", domain.FilterProjects{Tag: "python"}},
		{"open contact form", domain.OpenContact{}},
		{"I'd like to hire you", domain.OpenContact{}},
		{"switch to dark mode", domain.ToggleTheme{Mode: domain.ThemeDark}},
		{"enable light theme", domain.ToggleTheme{Mode: domain.ThemeLight}},
		{"use the system theme", domain.ToggleTheme{Mode: domain.ThemeSystem}},
		{"take me home", domain.Navigate{Page: domain.PageHome}},
		{"go to the projects page", domain.Navigate{Page: domain.PageProjects}},
		{"navigate to about", domain.Navigate{Page: domain.PageAbout}},
		{"visit your cv", domain.Navigate{Page: domain.PageResume}},
		{"scroll to skills", domain.ScrollTo{ID: "skills"}},
		{"go to skills", domain.ScrollTo{ID: "skills"}},
		{"jump to experience", domain.ScrollTo{ID: "experience"}},
		{"show me the about section", domain.ScrollTo{ID: "about"}},
		{"show me projects", domain.ScrollTo{ID: "projects"}},
		{"view resume pdf", domain.Navigate{Page: domain.PageResume}},
		{"open my resume", domain.Navigate{Page: domain.PageResume}},
		{"open pdf", domain.OpenResume{}},
		{"show cv pdf", domain.OpenResume{}},
		{"show your emails", domain.CopyEmail{}},
		{"share the ai agent", domain.ShareProject{Name: "ai agent (chatbot)"}},
		{"send me a link to retro arcade", domain.ShareProject{Name: "retro arcade"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Classify(userSays(tt.in)))
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	e := newTestEngine()

	// contact precedes every other tool
	assert.Equal(t, domain.OpenContact{}, e.Classify(userSays("copy email address")))
	assert.Equal(t, domain.OpenContact{}, e.Classify(userSays("go to contact")))
	// theme precedes navigate
	assert.Equal(t, domain.ToggleTheme{Mode: domain.ThemeDark}, e.Classify(userSays("go home in dark mode")))
	// navigate precedes scroll and open-resume
	assert.Equal(t, domain.Navigate{Page: domain.PageResume}, e.Classify(userSays("Open resume PDF")))
	assert.Equal(t, domain.Navigate{Page: domain.PageResume}, e.Classify(userSays("view the cv")))
	// scroll precedes open-resume without a navigation verb
	assert.Equal(t, domain.ScrollTo{ID: "resume"}, e.Classify(userSays("show resume")))
	// scroll precedes filter
	assert.Equal(t, domain.ScrollTo{ID: "projects"}, e.Classify(userSays("show projects")))
	// tool intents precede informational answers
	assert.Equal(t, domain.OpenContact{}, e.Classify(userSays("what is your email")))
}

func TestClassifyInformational(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		in   string
		want string
	}{
		{"what is your name", "Full name: Prasanna Loganathan."},
		{"how many years of experience", "Approximately 3 years of experience (since 2024). " +
			"Recent roles include: Game Asset Management Developer, AI Agent Developer."},
		{"how many projects", "Total projects: 5. By category: 1 Web Development, 1 3D Modeling, 1 AI Agent, 2 Game Development."},
		{"how many skills", "Total skills listed: 16. Breakdown: 6 in Fullstack & Databases, 4 in AI/ML, 3 in DevOps, 3 in Languages."},
		{"list skills in devops", "DevOps: Docker, GitHub Actions, API Gateway."},
		{"list skills for AI/ML", "AI/ML: OpenAI, LLaMa AI, Prompt Engineering, LangChain."},
		{"github profile", "Email: hello@example.com | GitHub: https://github.com/example | " +
			"LinkedIn: https://www.linkedin.com/in/example | Website: https://example.com"},
		{"what is your current role", "Current role: AI Agent Developer (2025 - Present). Title summary: AI Agent Developer."},
		{"resume link please", "You can view the resume at: https://example.com/Prasanna_Loganathan.pdf"},
		{"tell me about the 2d game", "\"2d game project\" — A 2D game project with two-dimensional graphics."},
		{"what is your tech stack", "Key skills include: React, Nextjs, Nodejs, FastAPI, MongoDB, MySql, OpenAI, " +
			"LLaMa AI, Prompt Engineering, LangChain, Docker, GitHub Actions, API Gateway, Javascript, Java. " +
			"Ask for projects using a specific tech, e.g., 'show React projects'."},
		{"which company", "Recent experience: Game Asset Management Developer @ ALT DEV.; AI Agent Developer @ StudySense AI.. " +
			"Ask for more details or open the resume."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := e.Classify(userSays(tt.in))
			if diff := cmp.Diff(domain.TextReply{Text: tt.want}, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestProjectCountBreakdownSumsToTotal(t *testing.T) {
	kb := testKnowledge()
	counts := CountByCategory(kb.Projects)

	sum := 0
	for _, c := range counts {
		sum += c.Count
	}
	assert.Equal(t, len(kb.Projects), sum)
	assert.Equal(t, "Web Development", counts[0].Category)
	assert.Equal(t, CategoryCount{Category: "Game Development", Count: 2}, counts[3])
}

func TestClassifyProjectsSummary(t *testing.T) {
	got := newTestEngine().Classify(userSays("tell me about the portfolio"))
	reply, ok := got.(domain.TextReply)
	require.True(t, ok)

	lines := strings.Split(reply.Text, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Here are a few highlighted projects:", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "• Personal Portfolio Website — A personal portfolio website"))
	assert.True(t, strings.HasSuffix(lines[1], "..."))
	assert.Equal(t, 120, len([]rune(strings.TrimSuffix(strings.TrimPrefix(lines[1], "• Personal Portfolio Website — "), "..."))))
	assert.Equal(t, "• AI agent (chatbot) — An AI agent (chatbot) is a software application that simulates conversations....", lines[3])
	assert.Equal(t, "You can ask to filter by tech, e.g., 'show React projects'.", lines[4])
}

func TestClassifyFirstTokenSubstringMatch(t *testing.T) {
	// "explain" contains "ai", the first word of "AI agent (chatbot)".
	got := newTestEngine().Classify(userSays("explain your stack"))
	assert.Equal(t, domain.TextReply{Text: "\"ai agent (chatbot)\" — An AI agent (chatbot) is a software application that simulates conversations."}, got)
}

func TestClassifyDefault(t *testing.T) {
	e := newTestEngine()
	want := domain.TextReply{Text: DefaultHelp}

	assert.Equal(t, want, e.Classify(userSays("asdkjaslkdj")))
	assert.Equal(t, want, e.Classify(nil))
	assert.Equal(t, want, e.Classify([]domain.Message{domain.AssistantMessage("hello")}))
	assert.Equal(t, want, e.Classify(userSays("?!?")))
	assert.True(t, IsDefaultHelp(e.Classify(userSays("asdkjaslkdj"))))
}

func TestClassifyUsesLatestUserMessage(t *testing.T) {
	history := []domain.Message{
		domain.UserMessage("switch to dark mode"),
		domain.AssistantMessage("Switching theme… 🌓"),
		domain.UserMessage("open contact form"),
		domain.AssistantMessage("Opening contact form… 📬"),
	}
	assert.Equal(t, domain.OpenContact{}, newTestEngine().Classify(history))
}

func TestClassifyIsIdempotent(t *testing.T) {
	e := newTestEngine()
	inputs := []string{"hi", "show react projects", "how many projects", "tell me about the portfolio", "asdkjaslkdj"}
	for _, in := range inputs {
		history := userSays(in)
		first, err := domain.MarshalToolCall(e.Classify(history))
		require.NoError(t, err)
		second, err := domain.MarshalToolCall(e.Classify(history))
		require.NoError(t, err)
		assert.Equal(t, first, second, in)
	}
}

func TestClassifyReadsCurrentSnapshot(t *testing.T) {
	kb := testKnowledge()
	source := domain.KnowledgeFunc(func() *domain.KnowledgeBase { return kb })
	e := NewEngine(source, WithClock(frozenAt(2026)))

	assert.Contains(t, e.Classify(userSays("how many projects")).(domain.TextReply).Text, "Total projects: 5.")

	next := testKnowledge()
	next.Projects = next.Projects[:1]
	kb = next
	assert.Contains(t, e.Classify(userSays("how many projects")).(domain.TextReply).Text, "Total projects: 1.")
}

func TestExperienceYearsFollowsClock(t *testing.T) {
	e := NewEngine(domain.StaticKnowledge(testKnowledge()), WithClock(frozenAt(2030)))
	got := e.Classify(userSays("years of experience")).(domain.TextReply).Text
	assert.True(t, strings.HasPrefix(got, "Approximately 7 years of experience (since 2024)."), got)
}

func TestExperienceYearsSingular(t *testing.T) {
	kb := testKnowledge()
	kb.Experience = []domain.ExperienceEntry{{Title: "Intern", Organisation: "Lab", Date: "2026 - Present"}}
	e := NewEngine(domain.StaticKnowledge(kb), WithClock(frozenAt(2026)))
	assert.Equal(t, domain.TextReply{Text: "Approximately 1 year of experience (since 2026). Recent roles include: Intern."},
		e.Classify(userSays("experience years")))
}

func TestContactInfoWithoutDetailsFallsThrough(t *testing.T) {
	kb := testKnowledge()
	kb.Site.Email, kb.Site.GitHub, kb.Site.LinkedIn, kb.Site.SiteURL = "", "", "", ""
	e := NewEngine(domain.StaticKnowledge(kb), WithClock(frozenAt(2026)))
	assert.Equal(t, domain.TextReply{Text: DefaultHelp}, e.Classify(userSays("linkedin")))
}

func TestCurrentRoleWithoutExperience(t *testing.T) {
	kb := testKnowledge()
	kb.Experience = nil
	kb.Site.Description = ""
	e := NewEngine(domain.StaticKnowledge(kb), WithClock(frozenAt(2026)))
	assert.Equal(t, domain.TextReply{Text: "Title: Engineer."}, e.Classify(userSays("what position")))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "none", Kind(nil))
	assert.Equal(t, "text", Kind(domain.TextReply{}))
	assert.Equal(t, "tool:navigate", Kind(domain.Navigate{Page: domain.PageHome}))
	assert.Equal(t, "tool:confetti", Kind(domain.UnknownTool{Name: "confetti"}))
}

func TestLocalClassifier(t *testing.T) {
	tc, err := Local{Engine: newTestEngine()}.Classify(context.Background(), userSays("open contact form"))
	require.NoError(t, err)
	assert.Equal(t, domain.OpenContact{}, tc)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChainPrefersLocalAnswer(t *testing.T) {
	remoteCalls := 0
	remote := domain.ClassifierFunc(func(context.Context, []domain.Message) (domain.ToolCall, error) {
		remoteCalls++
		return domain.TextReply{Text: "remote"}, nil
	})
	c := NewChain(Local{Engine: newTestEngine()}, remote, newTestLogger())

	tc, err := c.Classify(context.Background(), userSays("open contact form"))
	require.NoError(t, err)
	assert.Equal(t, domain.OpenContact{}, tc)
	assert.Zero(t, remoteCalls)

	tc, err = c.Classify(context.Background(), userSays("asdkjaslkdj"))
	require.NoError(t, err)
	assert.Equal(t, domain.TextReply{Text: "remote"}, tc)
	assert.Equal(t, 1, remoteCalls)
}

func TestChainKeepsLocalOnRemoteError(t *testing.T) {
	remote := domain.ClassifierFunc(func(context.Context, []domain.Message) (domain.ToolCall, error) {
		return nil, errors.New("boom")
	})
	c := NewChain(Local{Engine: newTestEngine()}, remote, newTestLogger())

	tc, err := c.Classify(context.Background(), userSays("asdkjaslkdj"))
	require.NoError(t, err)
	assert.Equal(t, domain.TextReply{Text: DefaultHelp}, tc)
}

func TestChainWithoutRemote(t *testing.T) {
	c := NewChain(Local{Engine: newTestEngine()}, nil, newTestLogger())
	tc, err := c.Classify(context.Background(), userSays("asdkjaslkdj"))
	require.NoError(t, err)
	assert.True(t, IsDefaultHelp(tc))
}
