package knowledge

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-assistant/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const minimalYAML = `
site:
  author: Test Author
  resume_file: cv.pdf
projects:
  - name: Alpha Tool
    category: Web
`

func TestDefaultKnowledgeBase(t *testing.T) {
	kb, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Prasanna Loganathan", kb.Site.Author)
	assert.Equal(t, "Prasanna_Loganathan.pdf", kb.Site.ResumeFile)
	require.Len(t, kb.Projects, 4)
	assert.Equal(t, "AI agent (chatbot)", kb.Projects[2].Name)
	assert.Equal(t, []string{"Unity", "C#", "Blender", "Photoshop"}, kb.Projects[3].Technologies)
	require.Len(t, kb.Skills, 5)
	assert.Equal(t, "Fullstack & Databases", kb.Skills[0].Section)
	require.Len(t, kb.Experience, 2)
	assert.Equal(t, "2025 - Present", kb.Experience[1].Date)
	assert.Equal(t, []string{"Python", "Java", "JavaScript", "Dart", "MongoDB"}, kb.Resume.SkillGroups[0].Skills)
	assert.Len(t, kb.Resume.ExploreLinks, 4)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("site: [unclosed"))
	assert.ErrorIs(t, err, domain.ErrKnowledgeLoad)

	_, err = Parse([]byte(`
site:
  site_url: https://example.com/
projects:
  - name: ""
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrKnowledgeLoad)
	msg := err.Error()
	assert.Contains(t, msg, "author or title is required")
	assert.Contains(t, msg, "must not end with '/'")
	assert.Contains(t, msg, "site.resume_file")
	assert.Contains(t, msg, "projects[0].name")
	assert.Contains(t, msg, "projects[0].category")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, domain.ErrKnowledgeLoad)
}

func TestOpenBuiltIn(t *testing.T) {
	s, err := Open("", nil, newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "", s.Path())
	assert.Len(t, s.Snapshot().Projects, 4)
	assert.NoError(t, s.Reload(context.Background()))
}

func TestReloadKeepsSnapshotOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	s, err := Open(path, nil, newTestLogger())
	require.NoError(t, err)
	before := s.Snapshot()
	assert.Equal(t, "Test Author", before.Site.Author)

	require.NoError(t, os.WriteFile(path, []byte("site: [broken"), 0o600))
	assert.Error(t, s.Reload(context.Background()))
	assert.Same(t, before, s.Snapshot())

	updated := minimalYAML + "  - name: Beta Tool\n    category: Web\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))
	require.NoError(t, s.Reload(context.Background()))
	assert.Len(t, s.Snapshot().Projects, 2)
	assert.Len(t, before.Projects, 1, "old snapshot must not be mutated")
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	s, err := Open(path, nil, newTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx, 20*time.Millisecond))

	updated := minimalYAML + "  - name: Beta Tool\n    category: Web\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	require.Eventually(t, func() bool {
		return len(s.Snapshot().Projects) == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatchBuiltInIsNoop(t *testing.T) {
	s := NewStore(&domain.KnowledgeBase{}, newTestLogger())
	assert.NoError(t, s.Watch(context.Background(), 0))
}
