package usecase

import (
	"fmt"

	"folio-assistant/internal/domain"
)

// Label returns the transcript text for tc: text replies verbatim, tools as
// a short progress line.
func Label(tc domain.ToolCall) string {
	var l labeler
	_ = tc.Accept(&l)
	return l.label
}

type labeler struct {
	label string
}

var _ domain.ToolVisitor = (*labeler)(nil)

func (l *labeler) VisitText(t domain.TextReply) error {
	l.label = t.Text
	return nil
}

func (l *labeler) VisitOpenContact(domain.OpenContact) error {
	l.label = "Opening contact form… 📬"
	return nil
}

func (l *labeler) VisitNavigate(n domain.Navigate) error {
	l.label = fmt.Sprintf("Navigating to %s… 🧭", n.Page)
	return nil
}

func (l *labeler) VisitScrollTo(domain.ScrollTo) error {
	l.label = "Scrolling to section… 🧷"
	return nil
}

func (l *labeler) VisitFilterProjects(f domain.FilterProjects) error {
	l.label = fmt.Sprintf("Filtering projects by %s… 🏷️", f.Tag)
	return nil
}

func (l *labeler) VisitToggleTheme(domain.ToggleTheme) error {
	l.label = "Switching theme… 🌓"
	return nil
}

func (l *labeler) VisitOpenResume(domain.OpenResume) error {
	l.label = "Opening resume PDF… 📄"
	return nil
}

func (l *labeler) VisitCopyEmail(domain.CopyEmail) error {
	l.label = "Copying email to clipboard… 📋"
	return nil
}

func (l *labeler) VisitShareProject(domain.ShareProject) error {
	l.label = "Copying project link… 🔗"
	return nil
}

func (l *labeler) VisitUnknown(u domain.UnknownTool) error {
	l.label = "Action: " + u.Name
	return nil
}
