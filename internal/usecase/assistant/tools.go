package assistant

import (
	"regexp"
	"strings"

	"folio-assistant/internal/domain"
)

// SectionIDs are the scrollable sections of the site, in match priority order.
var SectionIDs = []string{"home", "projects", "about", "skills", "experience", "resume", "contact"}

// CommonTags are the technology keywords recognised without a filter verb.
var CommonTags = []string{
	"react", "next", "typescript", "node", "python", "ai", "ml",
	"tailwind", "docker", "kubernetes", "firebase", "supabase", "graphql",
}

var (
	contactPattern = regexp.MustCompile(`\b(contact|email|reach|hire|message|talk)\b`)

	themePatterns = []struct {
		re   *regexp.Regexp
		mode domain.ThemeMode
	}{
		{regexp.MustCompile(`\b(dark mode|dark theme)\b`), domain.ThemeDark},
		{regexp.MustCompile(`\b(light mode|light theme)\b`), domain.ThemeLight},
		{regexp.MustCompile(`\b(system theme|system mode|auto)\b`), domain.ThemeSystem},
	}

	navigateVerb    = regexp.MustCompile(`\b(go|goto|navigate|take me|bring me|visit|head|return|open|view)\b`)
	navigateTargets = []struct {
		re   *regexp.Regexp
		page domain.Page
	}{
		{regexp.MustCompile(`\b(home|start|landing)\b`), domain.PageHome},
		{regexp.MustCompile(`\b(project|projects|work)\b`), domain.PageProjects},
		{regexp.MustCompile(`\b(about|bio)\b`), domain.PageAbout},
		{regexp.MustCompile(`\b(resume|cv)\b`), domain.PageResume},
	}

	scrollPatterns = compileScrollPatterns(SectionIDs)

	filterCapture = regexp.MustCompile(`(?:filter|show)\s+(?:me\s+)?([a-z0-9+.#-]+)\s+(?:projects|work)`)
	projectsWord  = regexp.MustCompile(`\b(projects|work)\b`)
	tagPatterns   = compileWordPatterns(CommonTags)

	openResumePattern = regexp.MustCompile(`(open|show|view)\s+(resume|cv|pdf)`)
	copyEmailPattern  = regexp.MustCompile(`(copy|what is|show)\s+(your\s+)?email`)
	emailIDPattern    = regexp.MustCompile(`email\s+(address|id)`)
	sharePattern      = regexp.MustCompile(`(share|link|send)`)
)

// compileScrollPatterns builds one pattern per section id requiring a scroll
// verb whose object is the id; only short fillers may sit between them.
func compileScrollPatterns(ids []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(ids))
	for i, id := range ids {
		out[i] = regexp.MustCompile(`\b(?:scroll|go to|jump|show|open)\b(?:\s+(?:to|the|me|my|down|up))*\s+` +
			regexp.QuoteMeta(id) + `\b`)
	}
	return out
}

func compileWordPatterns(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

// toolMatchers is the fixed tool-intent precedence. Earlier entries win when
// keywords overlap.
var toolMatchers = []matcher{
	detectContact,
	detectTheme,
	detectNavigate,
	detectScroll,
	detectFilterProjects,
	detectOpenResume,
	detectCopyEmail,
	detectShareProject,
}

func detectContact(q query) domain.ToolCall {
	if contactPattern.MatchString(q.text) {
		return domain.OpenContact{}
	}
	return nil
}

func detectTheme(q query) domain.ToolCall {
	for _, p := range themePatterns {
		if p.re.MatchString(q.text) {
			return domain.ToggleTheme{Mode: p.mode}
		}
	}
	return nil
}

func detectNavigate(q query) domain.ToolCall {
	if !navigateVerb.MatchString(q.text) {
		return nil
	}
	for _, target := range navigateTargets {
		if target.re.MatchString(q.text) {
			return domain.Navigate{Page: target.page}
		}
	}
	return nil
}

func detectScroll(q query) domain.ToolCall {
	for i, re := range scrollPatterns {
		if re.MatchString(q.text) {
			return domain.ScrollTo{ID: SectionIDs[i]}
		}
	}
	return nil
}

func detectFilterProjects(q query) domain.ToolCall {
	if m := filterCapture.FindStringSubmatch(q.text); m != nil {
		return domain.FilterProjects{Tag: m[1]}
	}
	if !projectsWord.MatchString(q.text) {
		return nil
	}
	for i, re := range tagPatterns {
		if re.MatchString(q.text) {
			return domain.FilterProjects{Tag: CommonTags[i]}
		}
	}
	return nil
}

func detectOpenResume(q query) domain.ToolCall {
	if openResumePattern.MatchString(q.text) {
		return domain.OpenResume{}
	}
	return nil
}

func detectCopyEmail(q query) domain.ToolCall {
	if copyEmailPattern.MatchString(q.text) || emailIDPattern.MatchString(q.text) {
		return domain.CopyEmail{}
	}
	return nil
}

func detectShareProject(q query) domain.ToolCall {
	if !sharePattern.MatchString(q.text) {
		return nil
	}
	if p, ok := findProjectByFirstToken(q.kb.Projects, q.text); ok {
		return domain.ShareProject{Name: strings.ToLower(p.Name)}
	}
	return nil
}

// findProjectByFirstToken returns the first project whose lowercased name's
// first word occurs anywhere in text as a substring. This over-matches short
// first words such as "ai" and is kept that way for compatibility.
func findProjectByFirstToken(projects []domain.Project, text string) (domain.Project, bool) {
	for _, p := range projects {
		tok := firstToken(p.Name)
		if tok != "" && strings.Contains(text, tok) {
			return p, true
		}
	}
	return domain.Project{}, false
}
