// Package store persists workbooks: named sheet grids. The main sheet holds
// one row per writer; each connected writer additionally owns a history
// sheet named by their Slack UID.
package store

import (
	"context"
	"errors"

	"github.com/gobridge/goalkeeper/sheet"
)

// ErrNoSheet is returned by Workbook implementations when the named sheet
// does not exist.
var ErrNoSheet = errors.New("sheet not found")

// Workbook persists named sheet grids. Implementations must be safe for
// concurrent use.
type Workbook interface {
	// Grid returns the cell data of the named sheet, or ErrNoSheet.
	Grid(ctx context.Context, name string) (sheet.Grid, error)
	// PutGrid creates or replaces the named sheet.
	PutGrid(ctx context.Context, name string, g sheet.Grid) error
	// SheetNames lists the sheets in the workbook.
	SheetNames(ctx context.Context) ([]string, error)
}
