package exchange

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tabflow/tabflow/pkg/models"
)

// ExportCSV renders a table's rows as CSV: one header row of column names in
// schema order, list values joined with ";". Quoting of values containing
// commas or quotes is handled by the CSV writer.
func ExportCSV(table *models.TableData) ([]byte, error) {
	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)

	header := make([]string, 0, len(table.Schema.Columns))
	for _, col := range table.Schema.Columns {
		header = append(header, col.Name)
	}

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range table.Rows {
		record := make([]string, 0, len(table.Schema.Columns))

		for _, col := range table.Schema.Columns {
			record = append(record, row.Values[col.ID].Text())
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row %s: %w", row.ID, err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// ImportCSV parses CSV rows against the schema. Columns are matched to header
// fields by name; unmatched header fields are ignored. Values are coerced to
// the declared column type, with list columns split on ";".
func ImportCSV(schema *models.TableSchema, r io.Reader) ([]map[string]models.Value, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: missing CSV header", ErrInvalidDocument)
		}

		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	// Map header positions to schema columns by name.
	columns := make([]*models.Column, len(header))
	for i, name := range header {
		columns[i] = schema.ColumnByName(name)
	}

	rows := make([]map[string]models.Value, 0)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}

		values := make(map[string]models.Value)

		for i, raw := range record {
			if i >= len(columns) || columns[i] == nil {
				continue
			}

			values[columns[i].ID] = models.CoerceValue(*columns[i], raw)
		}

		rows = append(rows, values)
	}

	return rows, nil
}
