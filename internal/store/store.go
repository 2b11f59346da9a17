// Package store is the card repository. It loads card rows from the tabular
// store, keeps the decoded records indexed by natural key, groups them into
// version histories and writes development-state changes back in one grouped
// write per project.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/sheet"
)

var (
	// ErrProjectNotLoaded indicates a read before Load for that project.
	ErrProjectNotLoaded = errors.New("project not loaded")
	// ErrCardNotFound indicates the requested card does not exist.
	ErrCardNotFound = errors.New("card not found")
	// ErrDuplicateKey indicates two records with the same project, number and version.
	ErrDuplicateKey = errors.New("duplicate card version")
)

// RowError is a row that could not be loaded.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// LoadReport summarizes a Load.
type LoadReport struct {
	ProjectID int
	Loaded    int
	Errors    []*RowError
}

type entry struct {
	card *domain.Card
	row  int
}

type project struct {
	entries map[domain.Key]*entry
}

// Store manages the decoded card records of every loaded project.
type Store struct {
	table sheet.Table
	log   *zap.Logger

	mu       sync.RWMutex
	projects map[int]*project
}

// New creates an empty Store reading from table.
func New(table sheet.Table, log *zap.Logger) *Store {
	return &Store{
		table:    table,
		log:      log,
		projects: make(map[int]*project),
	}
}

// Load reads every row of a project, replacing what was loaded before. Rows
// that fail to decode are reported and skipped; they never fail the load.
func (s *Store) Load(ctx context.Context, projectID int) (*LoadReport, error) {
	rows, err := s.table.Rows(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %d: %w", projectID, err)
	}

	report := &LoadReport{ProjectID: projectID}
	p := &project{entries: make(map[domain.Key]*entry, len(rows))}
	for _, row := range rows {
		card, err := sheet.Deserialize(projectID, row.Cells)
		if err == nil {
			if _, dup := p.entries[card.Key()]; dup {
				err = fmt.Errorf("%w: %s", ErrDuplicateKey, card.Key())
			}
		}
		if err != nil {
			report.Errors = append(report.Errors, &RowError{Index: row.Index, Err: err})
			fields := []zap.Field{zap.Int("project", projectID), zap.Int("row", row.Index), zap.Error(err)}
			var de *sheet.DeserializationError
			if errors.As(err, &de) && de.Number != 0 {
				fields = append(fields, zap.Int("number", de.Number))
			}
			s.log.Warn("skipping card row", fields...)
			continue
		}
		p.entries[card.Key()] = &entry{card: card, row: row.Index}
		report.Loaded++
	}

	s.mu.Lock()
	s.projects[projectID] = p
	s.mu.Unlock()

	s.log.Debug("loaded project",
		zap.Int("project", projectID),
		zap.Int("cards", report.Loaded),
		zap.Int("errors", len(report.Errors)))
	return report, nil
}

// Cards returns copies of every card of a project in row order. Callers may
// mutate the copies and hand them to Save.
func (s *Store) Cards(projectID int) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProjectNotLoaded, projectID)
	}
	entries := make([]*entry, 0, len(p.entries))
	for _, e := range p.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].row < entries[j].row })

	cards := make([]*domain.Card, len(entries))
	for i, e := range entries {
		cards[i] = e.card.Clone()
	}
	return cards, nil
}

// Card returns a copy of one card.
func (s *Store) Card(key domain.Key) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[key.ProjectID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProjectNotLoaded, key.ProjectID)
	}
	e, ok := p.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, key)
	}
	return e.card.Clone(), nil
}

// Groups returns the version histories of a project ordered by card number.
func (s *Store) Groups(projectID int) ([]Group, error) {
	cards, err := s.Cards(projectID)
	if err != nil {
		return nil, err
	}
	return GroupVersions(cards), nil
}

// Group returns the version history of one card number.
func (s *Store) Group(projectID, number int) (Group, error) {
	groups, err := s.Groups(projectID)
	if err != nil {
		return Group{}, err
	}
	for _, g := range groups {
		if g.Number == number {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("%w: %d/%d", ErrCardNotFound, projectID, number)
}

// Save writes the given cards back, one grouped write per project. Every card
// must already exist; nothing is written if one does not.
func (s *Store) Save(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byProject := make(map[int][]sheet.Row)
	var projectIDs []int
	for _, card := range cards {
		p, ok := s.projects[card.ProjectID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrProjectNotLoaded, card.ProjectID)
		}
		e, ok := p.entries[card.Key()]
		if !ok {
			return fmt.Errorf("%w: %s", ErrCardNotFound, card.Key())
		}
		if _, seen := byProject[card.ProjectID]; !seen {
			projectIDs = append(projectIDs, card.ProjectID)
		}
		byProject[card.ProjectID] = append(byProject[card.ProjectID], sheet.Row{
			Index: e.row,
			Cells: sheet.Serialize(card),
		})
	}

	for _, id := range projectIDs {
		if err := s.table.Update(ctx, id, byProject[id]); err != nil {
			return fmt.Errorf("save project %d: %w", id, err)
		}
	}
	for _, card := range cards {
		s.projects[card.ProjectID].entries[card.Key()].card = card.Clone()
	}

	s.log.Info("saved cards", zap.Int("count", len(cards)), zap.Ints("projects", projectIDs))
	return nil
}

// Add appends a new card record.
func (s *Store) Add(ctx context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[card.ProjectID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrProjectNotLoaded, card.ProjectID)
	}
	if _, dup := p.entries[card.Key()]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, card.Key())
	}

	rows, err := s.table.Append(ctx, card.ProjectID, [][]string{sheet.Serialize(card)})
	if err != nil {
		return fmt.Errorf("add %s: %w", card.Key(), err)
	}
	p.entries[card.Key()] = &entry{card: card.Clone(), row: rows[0].Index}
	return nil
}

// NewVersion records the next version of a card number. The new record starts
// from the latest version with the given note and no issue; the previous
// record stays as history.
func (s *Store) NewVersion(ctx context.Context, projectID, number int, version domain.Version, note domain.Note) (*domain.Card, error) {
	group, err := s.Group(projectID, number)
	if err != nil {
		return nil, err
	}
	if !group.Latest.Version.Less(version) {
		return nil, fmt.Errorf("version %s must be after %s", version, group.Latest.Version)
	}

	next := group.Latest.Clone()
	next.Version = version
	next.Note = &note
	next.GithubStatus = nil
	if err := s.Add(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Destroy deletes a card record from the backing store.
func (s *Store) Destroy(ctx context.Context, key domain.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[key.ProjectID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrProjectNotLoaded, key.ProjectID)
	}
	e, ok := p.entries[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, key)
	}
	if err := s.table.Delete(ctx, key.ProjectID, e.row); err != nil {
		return fmt.Errorf("destroy %s: %w", key, err)
	}
	delete(p.entries, key)
	return nil
}
