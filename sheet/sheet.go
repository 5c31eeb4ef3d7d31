// Package sheet provides name-based access to a grid of cells, the way a
// spreadsheet tab is used as a table: the first non-empty row is the header,
// columns are found by (case-insensitive) name rather than position, and
// rows are matched on a key column's value.
package sheet

import "strings"

// Grid is raw sheet data: rows of display-text cells. Timestamps are kept
// as RFC3339 text.
type Grid [][]string

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Sheet wraps a Grid with column lookup by header name. The header layout
// is resolved once when the sheet is created and cached; call Reload after
// structural edits that may have moved the header row.
type Sheet struct {
	name      string
	rows      Grid
	headerRow int      // -1 until a header row exists
	headers   []string // lowercased header cells
}

// New wraps rows in a Sheet and resolves the header row.
func New(name string, rows Grid) *Sheet {
	s := &Sheet{name: name, rows: rows}
	s.Reload()
	return s
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// Grid returns the underlying cell data.
func (s *Sheet) Grid() Grid { return s.rows }

// NumRows returns the total number of rows, header included.
func (s *Sheet) NumRows() int { return len(s.rows) }

// FirstDataRow returns the index of the first row below the header.
func (s *Sheet) FirstDataRow() int { return s.headerRow + 1 }

// DataRows returns the number of rows below the header.
func (s *Sheet) DataRows() int {
	if s.headerRow < 0 {
		return 0
	}
	return len(s.rows) - s.headerRow - 1
}

// Reload re-scans for the header row: the first row containing any
// non-empty cell.
func (s *Sheet) Reload() {
	s.headerRow = -1
	s.headers = nil
	for i, row := range s.rows {
		for _, cell := range row {
			if cell != "" {
				s.headerRow = i
				s.headers = make([]string, len(row))
				for j, h := range row {
					s.headers[j] = strings.ToLower(h)
				}
				return
			}
		}
	}
}

// FindColumns maps each name to the index of the first header cell that
// contains it, scanning left to right and ignoring case. Absent columns
// yield -1.
func (s *Sheet) FindColumns(names ...string) []int {
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = -1
		n := strings.ToLower(name)
		for j, h := range s.headers {
			if h != "" && strings.Contains(h, n) {
				idx[i] = j
				break
			}
		}
	}
	return idx
}

// FindRows returns the indices, in ascending order, of every data row whose
// cell in the named column equals any of values exactly. The result is
// empty both when nothing matches and when the column does not exist;
// callers must treat the two identically.
func (s *Sheet) FindRows(column string, values ...string) []int {
	col := s.FindColumns(column)[0]
	if col < 0 {
		return nil
	}
	var idx []int
	for i := s.headerRow + 1; i < len(s.rows); i++ {
		cell := s.cell(i, col)
		for _, v := range values {
			if cell == v {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

// Fields reads the named columns on row. A column that cannot be resolved,
// or a read past the grid's extent, yields "" at that slot.
func (s *Sheet) Fields(row int, names ...string) []string {
	cols := s.FindColumns(names...)
	out := make([]string, len(cols))
	for i, col := range cols {
		if col < 0 {
			continue
		}
		out[i] = s.cell(row, col)
	}
	return out
}

// SetFields writes the paired values to the named columns on row, growing
// the grid to include the target when needed. Columns that cannot be
// resolved are skipped.
func (s *Sheet) SetFields(row int, names []string, values []string) {
	cols := s.FindColumns(names...)
	for i, col := range cols {
		if col < 0 || i >= len(values) || row < 0 {
			continue
		}
		s.grow(row, col)
		s.rows[row][col] = values[i]
	}
}

// AppendRow inserts values immediately after the last existing row and
// returns the new row's index.
func (s *Sheet) AppendRow(values []string) int {
	s.rows = append(s.rows, append([]string(nil), values...))
	row := len(s.rows) - 1
	if s.headerRow < 0 {
		// the sheet was empty; this row may be its header
		s.Reload()
	}
	return row
}

func (s *Sheet) cell(row, col int) string {
	if row < 0 || row >= len(s.rows) {
		return ""
	}
	r := s.rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

func (s *Sheet) grow(row, col int) {
	for len(s.rows) <= row {
		s.rows = append(s.rows, nil)
	}
	for len(s.rows[row]) <= col {
		s.rows[row] = append(s.rows[row], "")
	}
}
