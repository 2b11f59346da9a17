package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/gh"
	"github.com/h0rv/cardsync/internal/reconcile"
	"github.com/h0rv/cardsync/internal/report"
)

type syncStep func(ctx context.Context, a *app, client *gh.Client, dryRun bool) (report.Tally, error)

func newSyncCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile cards with GitHub",
	}

	sub := func(use, short string, steps ...syncStep) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSync(cmd, opts, steps...)
			},
		}
	}

	cmd.AddCommand(
		sub("issues", "Open or update one issue per card awaiting implementation", syncIssues),
		sub("reviews", "Open or update one pull request per project listing playtesting changes", syncReviews),
		sub("threads", "Open or update one discussion thread per card", syncThreads),
		// Issues first: closing an issue changes which cards are reviewed
		sub("all", "Run the issue, review and thread syncs in order", syncIssues, syncReviews, syncThreads),
	)
	return cmd
}

func runSync(cmd *cobra.Command, opts *options, steps ...syncStep) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.github()
	if err != nil {
		return err
	}

	var tallies []report.Tally
	failed := 0
	for _, step := range steps {
		tally, err := step(ctx, a, client, opts.dryRun)
		if err != nil {
			if len(tallies) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderSummary(tallies...))
			}
			return err
		}
		tallies = append(tallies, tally)
		failed += tally.Failed
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.RenderSummary(tallies...))
	if failed > 0 {
		return fmt.Errorf("%d item(s) failed to sync", failed)
	}
	return nil
}

func (a *app) remote(r reconcile.Remote, dryRun bool) reconcile.Remote {
	if dryRun {
		return reconcile.DryRun(r, a.log)
	}
	return r
}

func (a *app) allLatest() ([]*domain.Card, error) {
	var cards []*domain.Card
	for _, p := range a.projects {
		latest, err := a.latest(p.ID)
		if err != nil {
			return nil, err
		}
		cards = append(cards, latest...)
	}
	return cards, nil
}

// persist saves the cards a sync settled. Nothing is saved on a dry run.
func (a *app) persist(ctx context.Context, dirty []*domain.Card, dryRun bool) error {
	if dryRun || len(dirty) == 0 {
		return nil
	}
	if err := a.store.Save(ctx, dirty); err != nil {
		return fmt.Errorf("failed to save synced cards: %w", err)
	}
	return nil
}

func syncIssues(ctx context.Context, a *app, client *gh.Client, dryRun bool) (report.Tally, error) {
	cards, err := a.allLatest()
	if err != nil {
		return report.Tally{}, err
	}
	artifacts, err := a.artifacts()
	if err != nil {
		return report.Tally{}, err
	}
	gc := a.cfg.GitHub
	remote, err := gh.NewIssueRemote(ctx, client, gc.Owner, gc.Repo, gc.IssueLabel)
	if err != nil {
		return report.Tally{}, err
	}

	sync := &reconcile.IssueSync{
		Remote:      a.remote(remote, dryRun),
		Artifacts:   artifacts,
		Labels:      labels(gc.IssueLabel),
		Concurrency: a.cfg.Sync.Concurrency,
		Log:         a.log,
	}
	result, err := sync.Run(ctx, cards)
	if err != nil {
		return report.Tally{}, err
	}
	if err := a.persist(ctx, result.Dirty, dryRun); err != nil {
		return report.Tally{}, err
	}
	return result.Summary.Tally("Issues", dryRun), nil
}

func syncReviews(ctx context.Context, a *app, client *gh.Client, dryRun bool) (report.Tally, error) {
	var batches []reconcile.ReviewBatch
	for _, p := range a.projects {
		cards, err := a.latest(p.ID)
		if err != nil {
			return report.Tally{}, err
		}
		batches = append(batches, reconcile.ReviewBatch{Project: p, Cards: cards})
	}
	gc := a.cfg.GitHub
	remote, err := gh.NewPullRemote(ctx, client, gc.Owner, gc.Repo, gc.ReviewLabel)
	if err != nil {
		return report.Tally{}, err
	}

	sync := &reconcile.ReviewSync{
		Remote: a.remote(remote, dryRun),
		Labels: labels(gc.ReviewLabel),
		Base:   gc.ReviewBase,
		Head:   gc.ReviewHead,
		Log:    a.log,
	}
	result, err := sync.Run(ctx, batches)
	if err != nil {
		return report.Tally{}, err
	}
	return result.Summary.Tally("Reviews", dryRun), nil
}

func syncThreads(ctx context.Context, a *app, client *gh.Client, dryRun bool) (report.Tally, error) {
	cards, err := a.allLatest()
	if err != nil {
		return report.Tally{}, err
	}
	artifacts, err := a.artifacts()
	if err != nil {
		return report.Tally{}, err
	}
	gc := a.cfg.GitHub
	remote, err := gh.NewDiscussionRemote(ctx, client, gc.Owner, gc.Repo, gc.DiscussionCategory)
	if err != nil {
		return report.Tally{}, err
	}

	sync := &reconcile.ThreadSync{
		Remote:      a.remote(remote, dryRun),
		Artifacts:   artifacts,
		Concurrency: a.cfg.Sync.Concurrency,
		Log:         a.log,
	}
	result, err := sync.Run(ctx, cards)
	if err != nil {
		return report.Tally{}, err
	}
	if err := a.persist(ctx, result.Dirty, dryRun); err != nil {
		return report.Tally{}, err
	}
	return result.Summary.Tally("Threads", dryRun), nil
}

func labels(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}
