package domain

// ProjectLink is an external link attached to a project card.
type ProjectLink struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// Project is one portfolio project card.
type Project struct {
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description" json:"description"`
	Category     string        `yaml:"category" json:"category"`
	Technologies []string      `yaml:"technologies" json:"technologies"`
	Links        []ProjectLink `yaml:"links,omitempty" json:"links,omitempty"`
}

// SkillGroup is a named list of skills.
type SkillGroup struct {
	Section string   `yaml:"section" json:"section"`
	Skills  []string `yaml:"skills" json:"skills"`
}

// ExperienceEntry is one role. Date is free text such as "2024 - Present".
type ExperienceEntry struct {
	Title        string `yaml:"title" json:"title"`
	Organisation string `yaml:"organisation" json:"organisation"`
	Date         string `yaml:"date" json:"date"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
}

// EducationEntry is one degree or course.
type EducationEntry struct {
	Institution string `yaml:"institution" json:"institution"`
	Degree      string `yaml:"degree" json:"degree"`
	Date        string `yaml:"date" json:"date"`
}

// ExploreLink is a shortcut shown on the resume page.
type ExploreLink struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"href" json:"href"`
}

// ResumeData is the structured resume.
type ResumeData struct {
	Role         string            `yaml:"role" json:"role"`
	Summary      string            `yaml:"summary,omitempty" json:"summary,omitempty"`
	SkillGroups  []SkillGroup      `yaml:"skill_groups" json:"skill_groups"`
	Experience   []ExperienceEntry `yaml:"experience" json:"experience"`
	Projects     []Project         `yaml:"projects" json:"projects"`
	Education    []EducationEntry  `yaml:"education" json:"education"`
	ExploreLinks []ExploreLink     `yaml:"explore_links" json:"explore_links"`
}

// SiteMetadata holds the site owner's identity and contact details.
type SiteMetadata struct {
	Author      string `yaml:"author" json:"author"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Email       string `yaml:"email" json:"email"`
	GitHub      string `yaml:"github" json:"github"`
	LinkedIn    string `yaml:"linkedin" json:"linkedin"`
	SiteURL     string `yaml:"site_url" json:"site_url"`
	ResumeFile  string `yaml:"resume_file" json:"resume_file"`
}

// KnowledgeBase is one immutable snapshot of portfolio content. Values are
// never mutated after loading; a reload produces a new snapshot.
type KnowledgeBase struct {
	Site       SiteMetadata      `yaml:"site" json:"site"`
	Projects   []Project         `yaml:"projects" json:"projects"`
	Skills     []SkillGroup      `yaml:"skills" json:"skills"`
	Experience []ExperienceEntry `yaml:"experience" json:"experience"`
	Resume     ResumeData        `yaml:"resume" json:"resume"`
}

// KnowledgeSource yields the current knowledge-base snapshot.
type KnowledgeSource interface {
	Snapshot() *KnowledgeBase
}

// ResumePath returns the site-relative path of the resume document.
func (kb *KnowledgeBase) ResumePath() string {
	return "/" + kb.Site.ResumeFile
}

// KnowledgeFunc adapts a function to KnowledgeSource.
type KnowledgeFunc func() *KnowledgeBase

// Snapshot calls f.
func (f KnowledgeFunc) Snapshot() *KnowledgeBase { return f() }

// StaticKnowledge returns a source that always yields kb.
func StaticKnowledge(kb *KnowledgeBase) KnowledgeSource {
	return KnowledgeFunc(func() *KnowledgeBase { return kb })
}
