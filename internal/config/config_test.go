package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h0rv/cardsync/internal/domain"
)

const sampleYAML = `
github:
  owner: acme
  repo: cards
  issue_label: implement
projects:
  - id: 1
    name: Core Set
    short: core
  - id: 2
    name: Shadows
    short: sh
store:
  path: /tmp/cards.db
cache:
  url: redis://localhost:6379/0
  ttl: 5m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.GitHub.Owner)
	assert.Equal(t, "implement", cfg.GitHub.IssueLabel)
	// unset keys keep their defaults
	assert.Equal(t, "Playtesting", cfg.GitHub.DiscussionCategory)
	assert.Equal(t, "playtesting/{project}", cfg.GitHub.ReviewHead)
	assert.Len(t, cfg.Projects, 2)
	assert.Equal(t, "/tmp/cards.db", cfg.Store.Path)

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Store, cfg.Store)
	assert.Equal(t, 4, cfg.Sync.Concurrency)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "github: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CARDSYNC_GITHUB_OWNER", "other")
	t.Setenv("CARDSYNC_DB", "/var/lib/cards.db")
	t.Setenv("CARDSYNC_CONCURRENCY", "9")
	t.Setenv("CARDSYNC_ADDR", ":9000")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "other", cfg.GitHub.Owner)
	assert.Equal(t, "cards", cfg.GitHub.Repo)
	assert.Equal(t, "/var/lib/cards.db", cfg.Store.Path)
	assert.Equal(t, 9, cfg.Sync.Concurrency)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestGetenvInt_IgnoresGarbage(t *testing.T) {
	t.Setenv("CARDSYNC_CONCURRENCY", "many")
	assert.Equal(t, 4, getenvInt("CARDSYNC_CONCURRENCY", 4))
}

func TestValidate(t *testing.T) {
	t.Run("defaults lack repository and projects", func(t *testing.T) {
		err := DefaultConfig().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "github.owner")
		assert.Contains(t, err.Error(), "at least one project")
	})

	t.Run("duplicate project", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GitHub.Owner, cfg.GitHub.Repo = "acme", "cards"
		cfg.Projects = []ProjectConfig{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configured twice")
	})

	t.Run("object store needs renderer", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GitHub.Owner, cfg.GitHub.Repo = "acme", "cards"
		cfg.Projects = []ProjectConfig{{ID: 1, Name: "A"}}
		cfg.Artifacts.Endpoint = "localhost:9000"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "renderer_url")
	})

	t.Run("bad ttl", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GitHub.Owner, cfg.GitHub.Repo = "acme", "cards"
		cfg.Projects = []ProjectConfig{{ID: 1, Name: "A"}}
		cfg.Cache.TTL = "soon"
		assert.Error(t, cfg.Validate())
	})
}

func TestProject(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	p, err := cfg.Project(2)
	require.NoError(t, err)
	assert.Equal(t, domain.Project{ID: 2, Name: "Shadows", Short: "sh"}, p)

	_, err = cfg.Project(7)
	assert.ErrorIs(t, err, ErrUnknownProject)

	assert.Len(t, cfg.DomainProjects(), 2)
}

func TestSave_RoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "cardsync.yaml")
	require.NoError(t, cfg.Save(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
