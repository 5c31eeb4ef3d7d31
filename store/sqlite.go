package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	gsheet "github.com/gobridge/goalkeeper/sheet"
)

// sheetRow is the persisted form of one sheet: the whole grid as JSON.
// Sheets here are tiny (one row per writer, one history line per goal) so
// whole-grid writes are cheaper than cell-level bookkeeping.
type sheetRow struct {
	Name      string `gorm:"primaryKey"`
	Cells     string
	UpdatedAt time.Time
}

func (sheetRow) TableName() string { return "sheets" }

// SQLite is a Workbook backed by a single-file SQLite database.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the
// sheets table.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("executing %s: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&sheetRow{}); err != nil {
		return nil, fmt.Errorf("migrating sheets table: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Grid(ctx context.Context, name string) (gsheet.Grid, error) {
	var row sheetRow
	err := s.db.WithContext(ctx).First(&row, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSheet
	}
	if err != nil {
		return nil, fmt.Errorf("loading sheet %q: %w", name, err)
	}

	var g gsheet.Grid
	if err := json.Unmarshal([]byte(row.Cells), &g); err != nil {
		return nil, fmt.Errorf("decoding sheet %q: %w", name, err)
	}
	return g, nil
}

func (s *SQLite) PutGrid(ctx context.Context, name string, g gsheet.Grid) error {
	cells, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding sheet %q: %w", name, err)
	}

	row := sheetRow{Name: name, Cells: string(cells), UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"cells", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("storing sheet %q: %w", name, err)
	}
	return nil
}

func (s *SQLite) SheetNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&sheetRow{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	return names, nil
}
