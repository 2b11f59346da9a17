package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/artifact"
	"github.com/h0rv/cardsync/internal/auth"
	"github.com/h0rv/cardsync/internal/cache"
	"github.com/h0rv/cardsync/internal/config"
	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/gh"
	"github.com/h0rv/cardsync/internal/sheet"
	"github.com/h0rv/cardsync/internal/store"
)

// app holds the collaborators a command runs against.
type app struct {
	cfg      *config.Config
	table    sheet.Table
	store    *store.Store
	projects []domain.Project
	log      *zap.Logger

	sqlite *sheet.SQLiteTable
	redis  *redis.Client
}

// openApp loads the config, opens the card table and loads the selected
// projects into a store.
func openApp(ctx context.Context, opts *options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s:\n%w", opts.configPath, err)
	}

	projects := cfg.DomainProjects()
	if opts.project > 0 {
		p, err := cfg.Project(opts.project)
		if err != nil {
			return nil, err
		}
		projects = []domain.Project{p}
	}

	a := &app{cfg: cfg, projects: projects, log: opts.logger}
	if err := a.openTable(ctx); err != nil {
		return nil, err
	}

	a.store = store.New(a.table, a.log)
	for _, p := range projects {
		report, err := a.store.Load(ctx, p.ID)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load project %d: %w", p.ID, err)
		}
		for _, rowErr := range report.Errors {
			a.log.Warn("skipped card row",
				zap.Int("project", p.ID),
				zap.Int("row", rowErr.Index),
				zap.Error(rowErr.Err),
			)
		}
	}
	return a, nil
}

func (a *app) openTable(ctx context.Context) error {
	if dir := filepath.Dir(a.cfg.Store.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	sqlite, err := sheet.OpenSQLite(a.cfg.Store.Path)
	if err != nil {
		return err
	}
	a.sqlite = sqlite
	a.table = sqlite

	if a.cfg.Cache.URL == "" {
		return nil
	}
	ttl, err := a.cfg.CacheTTL()
	if err != nil {
		a.Close()
		return err
	}
	client, err := cache.Connect(ctx, a.cfg.Cache.URL)
	if err != nil {
		a.Close()
		return err
	}
	a.redis = client
	a.table = cache.New(sqlite, client, ttl, a.log)
	return nil
}

// Close releases the table and the cache connection.
func (a *app) Close() {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.sqlite != nil {
		errs = append(errs, a.sqlite.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("failed to close store", zap.Error(err))
	}
}

// singleProject returns the project a per-card command works on.
func (a *app) singleProject() (domain.Project, error) {
	if len(a.projects) != 1 {
		return domain.Project{}, errors.New("several projects are configured, select one with --project")
	}
	return a.projects[0], nil
}

// latest returns the latest version of every card of a project.
func (a *app) latest(projectID int) ([]*domain.Card, error) {
	groups, err := a.store.Groups(projectID)
	if err != nil {
		return nil, err
	}
	return store.Latest(groups), nil
}

// artifacts selects the image provider: rendered into an object store when
// one is configured, derived from the URL template otherwise.
func (a *app) artifacts() (artifact.Provider, error) {
	c := a.cfg.Artifacts
	if c.Endpoint == "" {
		return artifact.TemplateProvider{Template: c.URLTemplate}, nil
	}
	client, err := artifact.NewObjectClient(artifact.ObjectStoreConfig{
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Region:    c.Region,
		Secure:    c.Secure,
	})
	if err != nil {
		return nil, err
	}
	return &artifact.ObjectProvider{
		Client:    client,
		Bucket:    c.Bucket,
		PublicURL: c.PublicURL,
		Renderer:  artifact.NewHTTPRenderer(c.RendererURL),
		Log:       a.log,
	}, nil
}

func (a *app) github() (*gh.Client, error) {
	client, err := gh.New(auth.DefaultChain(a.cfg.GitHub.Token))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}
