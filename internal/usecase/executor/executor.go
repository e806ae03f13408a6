// Package executor turns tool calls into UI side effects.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"folio-assistant/internal/domain"
)

// Surface is the UI the executor drives. Implementations must be safe to call
// from the goroutine that received the reply.
type Surface interface {
	Navigate(ctx context.Context, path string) error
	ScrollTo(ctx context.Context, id string) error
	SetTheme(ctx context.Context, mode domain.ThemeMode) error
	Open(ctx context.Context, path string) error
	CopyText(ctx context.Context, text string) error
}

// Executor applies ToolCalls to a Surface. Failures are logged and returned
// for display; they never alter the chat transcript.
type Executor struct {
	surface   Surface
	knowledge domain.KnowledgeSource
	bus       domain.EventBus
	logger    *slog.Logger
}

// New creates an executor. bus may be nil, in which case open_contact is a
// no-op.
func New(surface Surface, knowledge domain.KnowledgeSource, bus domain.EventBus, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{surface: surface, knowledge: knowledge, bus: bus, logger: logger}
}

// Execute performs the side effect requested by tc. Text replies and unknown
// tools do nothing.
func (e *Executor) Execute(ctx context.Context, tc domain.ToolCall) error {
	if tc == nil {
		return nil
	}
	err := tc.Accept(&visit{ctx: ctx, e: e})
	if err != nil {
		e.logger.Warn("tool execution failed", "tool", toolName(tc), "error", err)
		return domain.WrapOp("executor.Execute", err)
	}
	return nil
}

func toolName(tc domain.ToolCall) string {
	if a, ok := tc.(domain.ToolAction); ok {
		return string(a.Tool())
	}
	return "text"
}

// PagePath returns the route of page.
func PagePath(p domain.Page) string {
	if p == domain.PageHome {
		return "/"
	}
	return "/" + string(p)
}

// FilterPath returns the projects route filtered by tag.
func FilterPath(tag string) string {
	return "/projects?tag=" + url.QueryEscape(tag)
}

type visit struct {
	ctx context.Context
	e   *Executor
}

func (v *visit) site() domain.SiteMetadata {
	if v.e.knowledge == nil {
		return domain.SiteMetadata{}
	}
	if kb := v.e.knowledge.Snapshot(); kb != nil {
		return kb.Site
	}
	return domain.SiteMetadata{}
}

func (v *visit) VisitText(domain.TextReply) error { return nil }

func (v *visit) VisitOpenContact(domain.OpenContact) error {
	if v.e.bus != nil {
		v.e.bus.Publish(v.ctx, domain.NewEvent(domain.EventContactOpen, "", nil))
	}
	return nil
}

func (v *visit) VisitNavigate(n domain.Navigate) error {
	return v.e.surface.Navigate(v.ctx, PagePath(n.Page))
}

func (v *visit) VisitScrollTo(s domain.ScrollTo) error {
	return v.e.surface.ScrollTo(v.ctx, s.ID)
}

func (v *visit) VisitFilterProjects(f domain.FilterProjects) error {
	return v.e.surface.Navigate(v.ctx, FilterPath(f.Tag))
}

func (v *visit) VisitToggleTheme(t domain.ToggleTheme) error {
	return v.e.surface.SetTheme(v.ctx, t.Mode)
}

func (v *visit) VisitOpenResume(domain.OpenResume) error {
	site := v.site()
	if site.ResumeFile == "" {
		return fmt.Errorf("no resume file configured")
	}
	return v.e.surface.Open(v.ctx, "/"+site.ResumeFile)
}

func (v *visit) VisitCopyEmail(domain.CopyEmail) error {
	site := v.site()
	if site.Email == "" {
		return fmt.Errorf("no email configured")
	}
	return v.e.surface.CopyText(v.ctx, site.Email)
}

func (v *visit) VisitShareProject(domain.ShareProject) error {
	return v.e.surface.CopyText(v.ctx, v.site().SiteURL+"/projects")
}

func (v *visit) VisitUnknown(u domain.UnknownTool) error {
	v.e.logger.Debug("ignoring unknown tool", "tool", u.Name)
	return nil
}
