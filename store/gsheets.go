package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	gsheet "github.com/gobridge/goalkeeper/sheet"
)

// GoogleSheets is a Workbook backed by a Google Sheets spreadsheet, one tab
// per sheet. This matches the layout the service grew up on: writers on the
// main tab, one history tab per connected writer.
type GoogleSheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewGoogleSheets builds a Workbook over the given spreadsheet. When
// credentialsFile is empty, application default credentials are used.
func NewGoogleSheets(ctx context.Context, spreadsheetID, credentialsFile string) (*GoogleSheets, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("building sheets service: %w", err)
	}

	return &GoogleSheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (s *GoogleSheets) Grid(ctx context.Context, name string) (gsheet.Grid, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange(name)).Context(ctx).Do()
	if err != nil {
		// a range that names a missing tab fails to parse
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 400 {
			return nil, ErrNoSheet
		}
		return nil, fmt.Errorf("loading sheet %q: %w", name, err)
	}

	g := make(gsheet.Grid, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		g[i] = cells
	}
	return g, nil
}

func (s *GoogleSheets) PutGrid(ctx context.Context, name string, g gsheet.Grid) error {
	exists, err := s.hasSheet(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		req := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: name}},
		}}}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
	}

	// Grids only ever grow in this system, so updating the written extent
	// is enough; no clear pass is needed.
	values := make([][]interface{}, len(g))
	for i, row := range g {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, sheetRange(name), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("storing sheet %q: %w", name, err)
	}
	return nil
}

func (s *GoogleSheets) SheetNames(ctx context.Context) ([]string, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}

	names := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			names = append(names, sh.Properties.Title)
		}
	}
	return names, nil
}

func (s *GoogleSheets) hasSheet(ctx context.Context, name string) (bool, error) {
	names, err := s.SheetNames(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// sheetRange quotes a tab name as an A1 range covering the whole tab.
func sheetRange(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
