package sheet

import (
	"context"
	"errors"
)

// ErrRowNotFound indicates a write to a row index that does not exist.
var ErrRowNotFound = errors.New("row not found")

// Row is one stored row and its position in the project's table.
type Row struct {
	Index int
	Cells []string
}

// Table is the tabular backing store. Rows are addressed by project and
// index; the store knows nothing about cards.
type Table interface {
	// Rows returns every row of a project ordered by index.
	Rows(ctx context.Context, projectID int) ([]Row, error)
	// Update rewrites the given rows in one grouped write.
	Update(ctx context.Context, projectID int, rows []Row) error
	// Append adds rows after the last one and returns them with their indexes.
	Append(ctx context.Context, projectID int, cells [][]string) ([]Row, error)
	// Delete removes a row.
	Delete(ctx context.Context, projectID int, index int) error
}
