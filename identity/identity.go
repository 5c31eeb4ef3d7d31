// Package identity links Slack identities to rows on the main sheet and
// owns the per-identity history logs.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gobridge/goalkeeper/sheet"
	"github.com/gobridge/goalkeeper/store"
)

// Column headings on the main sheet. Columns are located by name, so the
// sheet layout can change without code changes.
const (
	ColUID    = "Slack UID"
	ColWriter = "Writer"
	ColGoal   = "Goal"
	ColDate   = "Date"
)

// mainHeader is the header row written when the main sheet does not exist
// yet (fresh backend).
var mainHeader = []string{ColUID, ColWriter, ColGoal, ColDate}

// historyHeader is the header row of a per-identity history sheet.
var historyHeader = []string{"Date", "Goal", "Score"}

// Record is one writer's state on the main sheet.
type Record struct {
	Row         int
	ExternalID  string
	DisplayName string
	Goal        string
	GoalSetAt   time.Time // zero when the Date cell is empty or unparseable
}

// Resolver finds or creates main-sheet rows for Slack identities.
type Resolver struct {
	wb   store.Workbook
	main string
	log  *zap.SugaredLogger
}

// NewResolver returns a Resolver over wb using mainSheet as the main table.
func NewResolver(wb store.Workbook, mainSheet string, log *zap.SugaredLogger) *Resolver {
	return &Resolver{wb: wb, main: mainSheet, log: log}
}

// IsKnown reports whether externalID already has a main-sheet row. Pure
// read, no mutation.
func (r *Resolver) IsKnown(ctx context.Context, externalID string) (bool, error) {
	s, err := r.mainSheet(ctx)
	if errors.Is(err, store.ErrNoSheet) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(s.FindRows(ColUID, externalID)) > 0, nil
}

// Resolve returns the main-sheet row for the given identity, connecting it
// first if necessary:
//
//  1. an exact Slack UID match wins, lowest row first;
//  2. otherwise the first unclaimed row whose Writer name appears inside
//     the incoming display name is appropriated;
//  3. otherwise a new row is appended.
//
// Newly connected identities get a history sheet seeded with whatever goal
// their row already carried. Resolve is idempotent for a connected identity.
func (r *Resolver) Resolve(ctx context.Context, externalID, displayName string) (int, error) {
	g, err := r.wb.Grid(ctx, r.main)
	if errors.Is(err, store.ErrNoSheet) {
		g = sheet.Grid{append([]string(nil), mainHeader...)}
	} else if err != nil {
		return 0, fmt.Errorf("loading %s: %w", r.main, err)
	}
	s := sheet.New(r.main, g)

	if rows := s.FindRows(ColUID, externalID); len(rows) > 0 {
		return rows[0], nil // already connected
	}

	row := r.appropriate(s, externalID, displayName)
	if row < 0 {
		row = s.AppendRow(nil)
		s.SetFields(row, []string{ColUID, ColWriter}, []string{externalID, displayName})
		r.log.Infow("new writer", "uid", externalID, "name", displayName)
	}
	if err := r.wb.PutGrid(ctx, r.main, s.Grid()); err != nil {
		return 0, fmt.Errorf("storing %s: %w", r.main, err)
	}

	if err := r.ensureHistory(ctx, externalID, s, row); err != nil {
		return 0, err
	}
	return row, nil
}

// appropriate scans data rows in order for a non-empty Writer name that is
// a substring of the incoming display name and whose UID cell is still
// empty, and claims the first such row. First match wins, not best match.
func (r *Resolver) appropriate(s *sheet.Sheet, externalID, displayName string) int {
	lower := strings.ToLower(displayName)
	for row := s.FirstDataRow(); row < s.NumRows(); row++ {
		f := s.Fields(row, ColWriter, ColUID)
		writer, uid := f[0], f[1]
		if writer == "" || uid != "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(writer)) {
			r.log.Infow("appropriating unclaimed row", "writer", writer, "uid", externalID, "name", displayName)
			s.SetFields(row, []string{ColUID}, []string{externalID})
			return row
		}
	}
	return -1
}

// ensureHistory creates the identity's history sheet when absent and seeds
// it with the main row's current (Date, Goal) if it holds no entries yet.
func (r *Resolver) ensureHistory(ctx context.Context, externalID string, main *sheet.Sheet, row int) error {
	g, err := r.wb.Grid(ctx, externalID)
	if errors.Is(err, store.ErrNoSheet) {
		g = sheet.Grid{append([]string(nil), historyHeader...)}
	} else if err != nil {
		return fmt.Errorf("loading history for %s: %w", externalID, err)
	}

	h := sheet.New(externalID, g)
	if h.DataRows() > 0 {
		return nil // already seeded
	}

	f := main.Fields(row, ColDate, ColGoal)
	h.AppendRow([]string{f[0], f[1], ""})
	if err := r.wb.PutGrid(ctx, externalID, h.Grid()); err != nil {
		return fmt.Errorf("storing history for %s: %w", externalID, err)
	}
	return nil
}

// Record returns the state stored for externalID, or nil when no row
// exists. A nil record is a miss, not an error.
func (r *Resolver) Record(ctx context.Context, externalID string) (*Record, error) {
	s, err := r.mainSheet(ctx)
	if errors.Is(err, store.ErrNoSheet) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows := s.FindRows(ColUID, externalID)
	if len(rows) == 0 {
		return nil, nil
	}

	f := s.Fields(rows[0], ColWriter, ColGoal, ColDate)
	rec := &Record{
		Row:         rows[0],
		ExternalID:  externalID,
		DisplayName: f[0],
		Goal:        f[1],
	}
	if f[2] != "" {
		if t, err := time.Parse(time.RFC3339, f[2]); err == nil {
			rec.GoalSetAt = t
		}
	}
	return rec, nil
}

// SetGoal writes goal and its timestamp to externalID's main row and
// appends a history entry. The identity must already be connected.
func (r *Resolver) SetGoal(ctx context.Context, externalID, goal string, now time.Time) error {
	s, err := r.mainSheet(ctx)
	if err != nil {
		return err
	}

	rows := s.FindRows(ColUID, externalID)
	if len(rows) == 0 {
		return fmt.Errorf("no main-sheet row for %s", externalID)
	}

	stamp := now.Format(time.RFC3339)
	s.SetFields(rows[0], []string{ColDate, ColGoal}, []string{stamp, goal})
	if err := r.wb.PutGrid(ctx, r.main, s.Grid()); err != nil {
		return fmt.Errorf("storing %s: %w", r.main, err)
	}

	g, err := r.wb.Grid(ctx, externalID)
	if errors.Is(err, store.ErrNoSheet) {
		g = sheet.Grid{append([]string(nil), historyHeader...)}
	} else if err != nil {
		return fmt.Errorf("loading history for %s: %w", externalID, err)
	}
	h := sheet.New(externalID, g)
	h.AppendRow([]string{stamp, goal, ""})
	if err := r.wb.PutGrid(ctx, externalID, h.Grid()); err != nil {
		return fmt.Errorf("storing history for %s: %w", externalID, err)
	}
	return nil
}

// History returns the identity's history log, oldest first. A missing
// history sheet yields an empty log.
func (r *Resolver) History(ctx context.Context, externalID string) ([]HistoryEntry, error) {
	g, err := r.wb.Grid(ctx, externalID)
	if errors.Is(err, store.ErrNoSheet) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", externalID, err)
	}

	h := sheet.New(externalID, g)
	entries := make([]HistoryEntry, 0, h.DataRows())
	for row := h.FirstDataRow(); row < h.NumRows(); row++ {
		f := h.Fields(row, "Date", "Goal", "Score")
		e := HistoryEntry{Goal: f[1], Score: f[2]}
		if f[0] != "" {
			if t, err := time.Parse(time.RFC3339, f[0]); err == nil {
				e.Date = t
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// HistoryEntry is one append-only log line of a past goal-setting event.
// Score is recorded but unused.
type HistoryEntry struct {
	Date  time.Time
	Goal  string
	Score string
}

func (r *Resolver) mainSheet(ctx context.Context) (*sheet.Sheet, error) {
	g, err := r.wb.Grid(ctx, r.main)
	if err != nil {
		if errors.Is(err, store.ErrNoSheet) {
			return nil, err
		}
		return nil, fmt.Errorf("loading %s: %w", r.main, err)
	}
	return sheet.New(r.main, g), nil
}
