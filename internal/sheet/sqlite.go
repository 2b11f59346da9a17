package sheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteTable is a Table kept in a local SQLite database. Each row's cells are
// stored as a JSON array so the table stays as schema-less as a spreadsheet.
type SQLiteTable struct {
	db *sql.DB
}

// OpenSQLite opens or creates the table database at path.
func OpenSQLite(path string) (*SQLiteTable, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS card_rows (
			project_id INTEGER NOT NULL,
			row_index INTEGER NOT NULL,
			cells TEXT NOT NULL,
			PRIMARY KEY (project_id, row_index)
		);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteTable{db: db}, nil
}

// Close closes the database.
func (t *SQLiteTable) Close() error {
	return t.db.Close()
}

// Rows implements Table.
func (t *SQLiteTable) Rows(ctx context.Context, projectID int) ([]Row, error) {
	rs, err := t.db.QueryContext(ctx,
		`SELECT row_index, cells FROM card_rows WHERE project_id = ? ORDER BY row_index`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer func() { _ = rs.Close() }()

	var rows []Row
	for rs.Next() {
		var (
			row   Row
			cells string
		)
		if err := rs.Scan(&row.Index, &cells); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(cells), &row.Cells); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", row.Index, err)
		}
		rows = append(rows, row)
	}
	return rows, rs.Err()
}

// Update implements Table. Either every row is written or none is.
func (t *SQLiteTable) Update(ctx context.Context, projectID int, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range rows {
		cells, err := json.Marshal(row.Cells)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", row.Index, err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE card_rows SET cells = ? WHERE project_id = ? AND row_index = ?`,
			string(cells), projectID, row.Index)
		if err != nil {
			return fmt.Errorf("update row %d: %w", row.Index, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: project %d index %d", ErrRowNotFound, projectID, row.Index)
		}
	}
	return tx.Commit()
}

// Append implements Table.
func (t *SQLiteTable) Append(ctx context.Context, projectID int, cells [][]string) ([]Row, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(row_index) + 1, 0) FROM card_rows WHERE project_id = ?`, projectID,
	).Scan(&next); err != nil {
		return nil, fmt.Errorf("next index: %w", err)
	}

	rows := make([]Row, 0, len(cells))
	for _, c := range cells {
		encoded, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode row: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO card_rows (project_id, row_index, cells) VALUES (?, ?, ?)`,
			projectID, next, string(encoded)); err != nil {
			return nil, fmt.Errorf("insert row %d: %w", next, err)
		}
		rows = append(rows, Row{Index: next, Cells: c})
		next++
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rows, nil
}

// Delete implements Table.
func (t *SQLiteTable) Delete(ctx context.Context, projectID int, index int) error {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM card_rows WHERE project_id = ? AND row_index = ?`, projectID, index)
	if err != nil {
		return fmt.Errorf("delete row %d: %w", index, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: project %d index %d", ErrRowNotFound, projectID, index)
	}
	return nil
}
