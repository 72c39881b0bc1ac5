package contracts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// Row is one trading day of the aligned table
type Row struct {
	Date   time.Time
	Values map[string]null.Float
}

// Get returns the value of a column (null when absent)
func (r Row) Get(column string) null.Float {
	if r.Values == nil {
		return null.Float{}
	}
	return r.Values[column]
}

type rowJSON struct {
	Date   string                `json:"date"`
	Values map[string]null.Float `json:"values"`
}

// MarshalJSON writes the date as YYYY-MM-DD
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		Date:   r.Date.Format(DateLayout),
		Values: r.Values,
	})
}

// UnmarshalJSON reads the YYYY-MM-DD date form
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw rowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("parse row date %q: %w", raw.Date, err)
	}
	r.Date = date
	r.Values = raw.Values
	return nil
}

// Table is the aligned (and derived) daily table.
// Rows are strictly ascending by date with no duplicates.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// HasColumn reports whether column is part of the table
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Latest returns the last row
func (t *Table) Latest() (Row, bool) {
	if t.IsEmpty() {
		return Row{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// Previous returns the row before the latest.
// With a single row the latest row is returned.
func (t *Table) Previous() (Row, bool) {
	switch t.Len() {
	case 0:
		return Row{}, false
	case 1:
		return t.Rows[0], true
	default:
		return t.Rows[len(t.Rows)-2], true
	}
}

// Tail returns the last n rows (all rows when n <= 0 or n > Len)
func (t *Table) Tail(n int) []Row {
	if n <= 0 || n >= t.Len() {
		return t.Rows
	}
	return t.Rows[len(t.Rows)-n:]
}

// Column returns the values of one column in row order
func (t *Table) Column(column string) []null.Float {
	out := make([]null.Float, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Get(column)
	}
	return out
}
