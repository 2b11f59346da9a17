package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ImportCSV appends the rows of a sheet exported as CSV. A first row whose
// first cell is the Number column header is skipped. Returns the number of
// rows appended.
func ImportCSV(ctx context.Context, table Table, projectID int, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		if len(rows) == 0 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), ColNumber.String()) {
			continue
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return 0, nil
	}
	appended, err := table.Append(ctx, projectID, rows)
	if err != nil {
		return 0, err
	}
	return len(appended), nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
