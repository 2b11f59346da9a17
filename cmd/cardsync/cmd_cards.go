package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/h0rv/cardsync/internal/config"
	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/export"
	"github.com/h0rv/cardsync/internal/report"
	"github.com/h0rv/cardsync/internal/sheet"
	"github.com/h0rv/cardsync/internal/tui"
)

func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", opts.configPath)
			}
			cfg := config.DefaultConfig()
			cfg.Projects = []config.ProjectConfig{{ID: 1, Name: "Core Set", Short: "core"}}
			if err := cfg.Save(opts.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s. Set github.owner and github.repo before syncing.\n", opts.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var releasable, asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the latest version of every card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var cards []*domain.Card
			for _, p := range a.projects {
				latest, err := a.latest(p.ID)
				if err != nil {
					return err
				}
				for _, c := range latest {
					if !releasable || c.IsReleasable() {
						cards = append(cards, c)
					}
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(export.FromCards(cards, nil))
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tVERSION\tTYPE\tSTAGE\tNAME")
			for _, c := range cards {
				fmt.Fprintf(w, "%s\tv%s\t%s\t%s\t%s\n", c.Code(), c.Version, c.Type(), tui.StageOf(c), c.Name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&releasable, "releasable", false, "Only list cards assigned to a pack")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the card export as JSON")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Print every version of a card, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			project, err := a.singleProject()
			if err != nil {
				return err
			}
			group, err := a.store.Group(project.ID, number)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, card := range group.Versions() {
				if i > 0 {
					fmt.Fprintln(out, "---")
				}
				fmt.Fprintf(out, "# %s\n", report.Heading(card))
				if card.Note != nil {
					fmt.Fprintf(out, "%s: %s\n", card.Note.Type, card.Note.Text)
				}
				fmt.Fprintf(out, "Stage: %s\n\n", tui.StageOf(card))
				fmt.Fprintln(out, report.CardMarkdown(card))
			}
			return nil
		},
	}
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv>",
		Short: "Append the rows of a card sheet exported as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			project, err := a.singleProject()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			n, err := sheet.ImportCSV(cmd.Context(), a.table, project.ID, f)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}

			// Reload so malformed rows are reported now rather than on the next sync
			loaded, err := a.store.Load(cmd.Context(), project.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d row(s) into %s.\n", n, project.Name)
			for _, rowErr := range loaded.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  skipped %v\n", rowErr)
			}
			return nil
		},
	}
}

func newBumpCmd(opts *options) *cobra.Command {
	var noteType, noteText string
	cmd := &cobra.Command{
		Use:   "bump <number> <version>",
		Short: "Record a new version of a card",
		Long: `Records a new version of a card. The new version starts as a copy of the
latest one with the given change note and no issue.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			version, err := domain.ParseVersion(args[1])
			if err != nil {
				return err
			}
			nt, ok := domain.ParseNoteType(noteType)
			if !ok {
				return fmt.Errorf("unknown note type %q", noteType)
			}

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			project, err := a.singleProject()
			if err != nil {
				return err
			}
			card, err := a.store.NewVersion(cmd.Context(), project.ID, number, version, domain.Note{Type: nt, Text: noteText})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s.\n", report.Heading(card))
			return nil
		},
	}
	cmd.Flags().StringVar(&noteType, "note", string(domain.NoteUpdated), "Change note type: Updated, Reworked, Replaced, Implemented or Not Implemented")
	cmd.Flags().StringVar(&noteText, "text", "", "Change note text")
	return cmd
}

func newDestroyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <number> <version>",
		Short: "Delete one version of a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			version, err := domain.ParseVersion(args[1])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			project, err := a.singleProject()
			if err != nil {
				return err
			}
			key := domain.Key{ProjectID: project.ID, Number: number, Version: version}
			if err := a.store.Destroy(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", key)
			return nil
		},
	}
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("card number must be a positive integer")
	}
	return n, nil
}
