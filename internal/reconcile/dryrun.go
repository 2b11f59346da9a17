package reconcile

import (
	"context"

	"go.uber.org/zap"
)

// DryRun wraps a Remote so that listing is real but writes are only logged.
// Created resources come back open with no URL.
func DryRun(remote Remote, log *zap.Logger) Remote {
	return &dryRun{remote: remote, log: log}
}

type dryRun struct {
	remote Remote
	log    *zap.Logger
}

func (d *dryRun) List(ctx context.Context) ([]Resource, error) {
	return d.remote.List(ctx)
}

func (d *dryRun) Create(_ context.Context, desc Descriptor) (Resource, error) {
	d.log.Info("dry run: would create", zap.String("title", desc.Title), zap.Strings("labels", desc.Labels))
	return Resource{Title: desc.Title, Body: desc.Body, State: StateOpen}, nil
}

func (d *dryRun) Update(_ context.Context, r Resource, desc Descriptor) (Resource, error) {
	d.log.Info("dry run: would update", zap.String("title", desc.Title), zap.String("url", r.URL))
	r.Body = desc.Body
	return r, nil
}

func (d *dryRun) AddComment(_ context.Context, r Resource, body string) error {
	d.log.Info("dry run: would comment", zap.String("title", r.Title), zap.Int("bytes", len(body)))
	return nil
}
