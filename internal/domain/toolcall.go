package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToolName identifies a UI side effect the assistant can request.
type ToolName string

// Closed set of tool names understood by the executor.
const (
	ToolOpenContact    ToolName = "open_contact"
	ToolNavigate       ToolName = "navigate"
	ToolScrollTo       ToolName = "scroll_to"
	ToolFilterProjects ToolName = "filter_projects"
	ToolToggleTheme    ToolName = "toggle_theme"
	ToolOpenResume     ToolName = "open_resume"
	ToolCopyEmail      ToolName = "copy_email"
	ToolShareProject   ToolName = "share_project"
)

// KnownTools lists every tool name in declaration order.
var KnownTools = []ToolName{
	ToolOpenContact, ToolNavigate, ToolScrollTo, ToolFilterProjects,
	ToolToggleTheme, ToolOpenResume, ToolCopyEmail, ToolShareProject,
}

// Page is a routable top-level page of the site.
type Page string

const (
	PageHome     Page = "home"
	PageProjects Page = "projects"
	PageAbout    Page = "about"
	PageResume   Page = "resume"
)

// Valid reports whether p is one of the known pages.
func (p Page) Valid() bool {
	switch p {
	case PageHome, PageProjects, PageAbout, PageResume:
		return true
	}
	return false
}

// ThemeMode is a colour scheme selection.
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Valid reports whether m is one of the known theme modes.
func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// ToolCall is the classifier output: either a TextReply or one tool variant.
// The set of implementations is closed; dispatch goes through ToolVisitor so
// adding a variant breaks every visitor at compile time.
type ToolCall interface {
	Accept(v ToolVisitor) error
	isToolCall()
}

// ToolAction is a ToolCall on the tool branch.
type ToolAction interface {
	ToolCall
	Tool() ToolName
}

// ToolVisitor has one method per ToolCall variant.
type ToolVisitor interface {
	VisitText(TextReply) error
	VisitOpenContact(OpenContact) error
	VisitNavigate(Navigate) error
	VisitScrollTo(ScrollTo) error
	VisitFilterProjects(FilterProjects) error
	VisitToggleTheme(ToggleTheme) error
	VisitOpenResume(OpenResume) error
	VisitCopyEmail(CopyEmail) error
	VisitShareProject(ShareProject) error
	VisitUnknown(UnknownTool) error
}

// TextReply is a direct answer to display.
type TextReply struct {
	Text string
}

// OpenContact opens the contact modal.
type OpenContact struct{}

// Navigate changes the current page.
type Navigate struct {
	Page Page
}

// ScrollTo scrolls a section into view.
type ScrollTo struct {
	ID string
}

// FilterProjects shows the projects page filtered by a technology tag.
type FilterProjects struct {
	Tag string
}

// ToggleTheme switches the colour scheme.
type ToggleTheme struct {
	Mode ThemeMode
}

// OpenResume opens the resume document.
type OpenResume struct{}

// CopyEmail copies the site email address to the clipboard.
type CopyEmail struct{}

// ShareProject copies a project link to the clipboard.
type ShareProject struct {
	Name string
}

// UnknownTool carries a tool name this build does not know. It is only ever
// produced by decoding and is ignored by executors.
type UnknownTool struct {
	Name string
	Args json.RawMessage
}

func (TextReply) isToolCall()      {}
func (OpenContact) isToolCall()    {}
func (Navigate) isToolCall()       {}
func (ScrollTo) isToolCall()       {}
func (FilterProjects) isToolCall() {}
func (ToggleTheme) isToolCall()    {}
func (OpenResume) isToolCall()     {}
func (CopyEmail) isToolCall()      {}
func (ShareProject) isToolCall()   {}
func (UnknownTool) isToolCall()    {}

func (t TextReply) Accept(v ToolVisitor) error      { return v.VisitText(t) }
func (t OpenContact) Accept(v ToolVisitor) error    { return v.VisitOpenContact(t) }
func (t Navigate) Accept(v ToolVisitor) error       { return v.VisitNavigate(t) }
func (t ScrollTo) Accept(v ToolVisitor) error       { return v.VisitScrollTo(t) }
func (t FilterProjects) Accept(v ToolVisitor) error { return v.VisitFilterProjects(t) }
func (t ToggleTheme) Accept(v ToolVisitor) error    { return v.VisitToggleTheme(t) }
func (t OpenResume) Accept(v ToolVisitor) error     { return v.VisitOpenResume(t) }
func (t CopyEmail) Accept(v ToolVisitor) error      { return v.VisitCopyEmail(t) }
func (t ShareProject) Accept(v ToolVisitor) error   { return v.VisitShareProject(t) }
func (t UnknownTool) Accept(v ToolVisitor) error    { return v.VisitUnknown(t) }

func (OpenContact) Tool() ToolName    { return ToolOpenContact }
func (Navigate) Tool() ToolName       { return ToolNavigate }
func (ScrollTo) Tool() ToolName       { return ToolScrollTo }
func (FilterProjects) Tool() ToolName { return ToolFilterProjects }
func (ToggleTheme) Tool() ToolName    { return ToolToggleTheme }
func (OpenResume) Tool() ToolName     { return ToolOpenResume }
func (CopyEmail) Tool() ToolName      { return ToolCopyEmail }
func (ShareProject) Tool() ToolName   { return ToolShareProject }
func (t UnknownTool) Tool() ToolName  { return ToolName(t.Name) }

// IsText reports whether tc is on the text branch.
func IsText(tc ToolCall) bool {
	_, ok := tc.(TextReply)
	return ok
}

// --- JSON codec ---

const (
	wireTypeText = "text"
	wireTypeTool = "tool"
)

type wireText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wireTool struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Args any    `json:"args"`
}

type wireIn struct {
	Type string          `json:"type"`
	Text *string         `json:"text"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type pageArgs struct {
	Page Page `json:"page"`
}

type idArgs struct {
	ID string `json:"id"`
}

type tagArgs struct {
	Tag string `json:"tag"`
}

type modeArgs struct {
	Mode ThemeMode `json:"mode"`
}

type nameArgs struct {
	Name string `json:"name"`
}

type noArgs struct{}

// MarshalToolCall encodes tc in the wire shape
// {"type":"text","text":...} or {"type":"tool","name":...,"args":{...}}.
func MarshalToolCall(tc ToolCall) ([]byte, error) {
	var v any
	switch c := tc.(type) {
	case nil:
		return nil, fmt.Errorf("marshal tool call: %w", ErrMalformedCall)
	case TextReply:
		v = wireText{Type: wireTypeText, Text: c.Text}
	case OpenContact:
		v = wireTool{Type: wireTypeTool, Name: string(ToolOpenContact), Args: noArgs{}}
	case Navigate:
		v = wireTool{Type: wireTypeTool, Name: string(ToolNavigate), Args: pageArgs{Page: c.Page}}
	case ScrollTo:
		v = wireTool{Type: wireTypeTool, Name: string(ToolScrollTo), Args: idArgs{ID: c.ID}}
	case FilterProjects:
		v = wireTool{Type: wireTypeTool, Name: string(ToolFilterProjects), Args: tagArgs{Tag: c.Tag}}
	case ToggleTheme:
		v = wireTool{Type: wireTypeTool, Name: string(ToolToggleTheme), Args: modeArgs{Mode: c.Mode}}
	case OpenResume:
		v = wireTool{Type: wireTypeTool, Name: string(ToolOpenResume), Args: noArgs{}}
	case CopyEmail:
		v = wireTool{Type: wireTypeTool, Name: string(ToolCopyEmail), Args: noArgs{}}
	case ShareProject:
		v = wireTool{Type: wireTypeTool, Name: string(ToolShareProject), Args: nameArgs{Name: c.Name}}
	case UnknownTool:
		args := c.Args
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		v = wireTool{Type: wireTypeTool, Name: c.Name, Args: args}
	default:
		return nil, fmt.Errorf("marshal tool call %T: %w", tc, ErrMalformedCall)
	}
	return json.Marshal(v)
}

// UnmarshalToolCall decodes the wire shape produced by MarshalToolCall.
// Unknown tool names decode to UnknownTool; known names with invalid
// arguments return an error wrapping ErrMalformedCall.
func UnmarshalToolCall(data []byte) (ToolCall, error) {
	var in wireIn
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCall, err)
	}
	switch in.Type {
	case wireTypeText:
		if in.Text == nil {
			return nil, fmt.Errorf("%w: text reply without text", ErrMalformedCall)
		}
		return TextReply{Text: *in.Text}, nil
	case wireTypeTool:
		return decodeTool(ToolName(in.Name), in.Args)
	default:
		return nil, fmt.Errorf("%w: type %q", ErrMalformedCall, in.Type)
	}
}

func decodeTool(name ToolName, raw json.RawMessage) (ToolCall, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}
	bad := func(detail string) error {
		return fmt.Errorf("%w: %s: %s", ErrMalformedCall, name, detail)
	}

	switch name {
	case ToolOpenContact:
		return OpenContact{}, nil
	case ToolOpenResume:
		return OpenResume{}, nil
	case ToolCopyEmail:
		return CopyEmail{}, nil
	case ToolNavigate:
		var a pageArgs
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, bad(err.Error())
		}
		if !a.Page.Valid() {
			return nil, bad(fmt.Sprintf("unknown page %q", a.Page))
		}
		return Navigate{Page: a.Page}, nil
	case ToolScrollTo:
		var a idArgs
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, bad(err.Error())
		}
		if a.ID == "" {
			return nil, bad("missing id")
		}
		return ScrollTo{ID: a.ID}, nil
	case ToolFilterProjects:
		var a tagArgs
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, bad(err.Error())
		}
		if a.Tag == "" {
			return nil, bad("missing tag")
		}
		return FilterProjects{Tag: a.Tag}, nil
	case ToolToggleTheme:
		var a modeArgs
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, bad(err.Error())
		}
		if !a.Mode.Valid() {
			return nil, bad(fmt.Sprintf("unknown mode %q", a.Mode))
		}
		return ToggleTheme{Mode: a.Mode}, nil
	case ToolShareProject:
		var a nameArgs
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, bad(err.Error())
		}
		if a.Name == "" {
			return nil, bad("missing name")
		}
		return ShareProject{Name: a.Name}, nil
	case "":
		return nil, fmt.Errorf("%w: tool without name", ErrMalformedCall)
	default:
		return UnknownTool{Name: string(name), Args: append(json.RawMessage(nil), raw...)}, nil
	}
}

// ToolCallJSON adapts a ToolCall to encoding/json so it can be embedded in
// larger payloads.
type ToolCallJSON struct {
	ToolCall
}

// MarshalJSON implements json.Marshaler.
func (j ToolCallJSON) MarshalJSON() ([]byte, error) {
	if j.ToolCall == nil {
		return []byte("null"), nil
	}
	return MarshalToolCall(j.ToolCall)
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *ToolCallJSON) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		j.ToolCall = nil
		return nil
	}
	tc, err := UnmarshalToolCall(data)
	if err != nil {
		return err
	}
	j.ToolCall = tc
	return nil
}
