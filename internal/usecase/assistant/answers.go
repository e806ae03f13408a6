package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"folio-assistant/internal/domain"
)

const (
	projectSummaryCount    = 3
	projectSummaryRunes    = 120
	skillSampleCount       = 15
	experienceSummaryCount = 3
	recentRoleCount        = 3
)

var (
	identityPattern        = regexp.MustCompile(`(full\s+name|your\s+name|what\s+is\s+(the\s+)?name)`)
	experienceYearsPattern = regexp.MustCompile(`(how\s+many\s+(years\s+)?experience|years\s+of\s+experience|experience\s+years?)`)
	projectCountPattern    = regexp.MustCompile(`(how\s+many\s+projects|project\s+count|number\s+of\s+projects)`)
	skillCountPattern      = regexp.MustCompile(`(how\s+many\s+skills|skills\s+count|number\s+of\s+skills)`)
	listSkillsPattern      = regexp.MustCompile(`(list|show)\s+skills`)
	contactInfoPattern     = regexp.MustCompile(`(contact|email|linkedin|github|social)`)
	currentRolePattern     = regexp.MustCompile(`(current\s+role|what\s+do\s+you\s+do|position|title)`)
	resumeLinkPattern      = regexp.MustCompile(`(resume|cv)\s+(link|pdf|url)`)
	projectsSummaryPattern = regexp.MustCompile(`\b(projects|portfolio|work)\b`)
	skillsSummaryPattern   = regexp.MustCompile(`(skill|stack|tech|technology)`)
	experiencePattern      = regexp.MustCompile(`(experience|work|company|role|job)`)
)

// infoMatchers is the fixed informational precedence, tried after every tool
// matcher declined.
var infoMatchers = []matcher{
	asMatcher(answerIdentity),
	asMatcher(answerExperienceYears),
	asMatcher(answerProjectCount),
	asMatcher(answerSkillCounts),
	asMatcher(answerContactInfo),
	asMatcher(answerCurrentRole),
	asMatcher(answerResumeLink),
	asMatcher(answerProjects),
	asMatcher(answerSkills),
	asMatcher(answerExperience),
}

func answerIdentity(q query) (string, bool) {
	if !identityPattern.MatchString(q.text) {
		return "", false
	}
	name := q.kb.Site.Author
	if name == "" {
		name = q.kb.Site.Title
	}
	return fmt.Sprintf("Full name: %s.", name), true
}

func answerExperienceYears(q query) (string, bool) {
	if !experienceYearsPattern.MatchString(q.text) {
		return "", false
	}
	years, since := ExperienceYears(q.kb.Experience, q.year)
	plural := "s"
	if years == 1 {
		plural = ""
	}
	return fmt.Sprintf("Approximately %d year%s of experience (since %d). Recent roles include: %s.",
		years, plural, since, strings.Join(recentTitles(q.kb.Experience, recentRoleCount), ", ")), true
}

func recentTitles(entries []domain.ExperienceEntry, n int) []string {
	titles := make([]string, 0, n)
	for i, e := range entries {
		if i == n {
			break
		}
		titles = append(titles, e.Title)
	}
	return titles
}

// CategoryCount is one bucket of a project breakdown.
type CategoryCount struct {
	Category string
	Count    int
}

// CountByCategory groups projects by category in first-seen order.
func CountByCategory(projects []domain.Project) []CategoryCount {
	var out []CategoryCount
	index := make(map[string]int)
	for _, p := range projects {
		i, ok := index[p.Category]
		if !ok {
			i = len(out)
			index[p.Category] = i
			out = append(out, CategoryCount{Category: p.Category})
		}
		out[i].Count++
	}
	return out
}

func answerProjectCount(q query) (string, bool) {
	if !projectCountPattern.MatchString(q.text) {
		return "", false
	}
	counts := CountByCategory(q.kb.Projects)
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%d %s", c.Count, c.Category)
	}
	return fmt.Sprintf("Total projects: %d. By category: %s.", len(q.kb.Projects), strings.Join(parts, ", ")), true
}

func answerSkillCounts(q query) (string, bool) {
	if skillCountPattern.MatchString(q.text) {
		total := 0
		parts := make([]string, len(q.kb.Skills))
		for i, g := range q.kb.Skills {
			total += len(g.Skills)
			parts[i] = fmt.Sprintf("%d in %s", len(g.Skills), g.Section)
		}
		return fmt.Sprintf("Total skills listed: %d. Breakdown: %s.", total, strings.Join(parts, ", ")), true
	}

	if !listSkillsPattern.MatchString(q.text) {
		return "", false
	}
	for _, g := range q.kb.Skills {
		section := Normalize(g.Section)
		if section != "" && strings.Contains(q.text, section) {
			return fmt.Sprintf("%s: %s.", g.Section, strings.Join(g.Skills, ", ")), true
		}
	}
	return "", false
}

func answerContactInfo(q query) (string, bool) {
	if !contactInfoPattern.MatchString(q.text) {
		return "", false
	}
	site := q.kb.Site
	var parts []string
	for _, f := range []struct{ label, value string }{
		{"Email", site.Email},
		{"GitHub", site.GitHub},
		{"LinkedIn", site.LinkedIn},
		{"Website", site.SiteURL},
	} {
		if f.value != "" {
			parts = append(parts, f.label+": "+f.value)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " | "), true
}

func answerCurrentRole(q query) (string, bool) {
	if !currentRolePattern.MatchString(q.text) {
		return "", false
	}
	role := q.kb.Site.Description
	if role == "" {
		role = "Engineer"
	}
	if n := len(q.kb.Experience); n > 0 {
		latest := q.kb.Experience[n-1]
		return fmt.Sprintf("Current role: %s (%s). Title summary: %s.", latest.Title, latest.Date, role), true
	}
	return fmt.Sprintf("Title: %s.", role), true
}

func answerResumeLink(q query) (string, bool) {
	if !resumeLinkPattern.MatchString(q.text) {
		return "", false
	}
	return "You can view the resume at: " + q.kb.Site.SiteURL + q.kb.ResumePath(), true
}

func answerProjects(q query) (string, bool) {
	if p, ok := findProjectByFirstToken(q.kb.Projects, q.text); ok {
		return fmt.Sprintf("\"%s\" — %s", strings.ToLower(p.Name), p.Description), true
	}
	if !projectsSummaryPattern.MatchString(q.text) {
		return "", false
	}
	var b strings.Builder
	b.WriteString("Here are a few highlighted projects:\n")
	for i, p := range q.kb.Projects {
		if i == projectSummaryCount {
			break
		}
		fmt.Fprintf(&b, "• %s — %s...\n", p.Name, truncateRunes(p.Description, projectSummaryRunes))
	}
	b.WriteString("You can ask to filter by tech, e.g., 'show React projects'.")
	return b.String(), true
}

func answerSkills(q query) (string, bool) {
	if !skillsSummaryPattern.MatchString(q.text) {
		return "", false
	}
	var flat []string
	for _, g := range q.kb.Skills {
		flat = append(flat, g.Skills...)
	}
	if len(flat) > skillSampleCount {
		flat = flat[:skillSampleCount]
	}
	return fmt.Sprintf("Key skills include: %s. Ask for projects using a specific tech, e.g., 'show React projects'.",
		strings.Join(flat, ", ")), true
}

func answerExperience(q query) (string, bool) {
	if !experiencePattern.MatchString(q.text) {
		return "", false
	}
	var items []string
	for i, e := range q.kb.Experience {
		if i == experienceSummaryCount {
			break
		}
		items = append(items, e.Title+" @ "+e.Organisation)
	}
	return fmt.Sprintf("Recent experience: %s. Ask for more details or open the resume.", strings.Join(items, "; ")), true
}
