package identity

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/gobridge/goalkeeper/sheet"
	"github.com/gobridge/goalkeeper/store"
)

const mainName = "Sheet1"

func newTestResolver(t *testing.T, main sheet.Grid) (*Resolver, *store.Memory) {
	t.Helper()
	wb := store.NewMemory()
	if main != nil {
		if err := wb.PutGrid(context.Background(), mainName, main); err != nil {
			t.Fatalf("seeding main sheet: %v", err)
		}
	}
	return NewResolver(wb, mainName, zaptest.NewLogger(t).Sugar()), wb
}

func TestIsKnown(t *testing.T) {
	r, _ := newTestResolver(t, sheet.Grid{
		{ColUID, ColWriter, ColGoal, ColDate},
		{"U1", "alice", "", ""},
	})
	ctx := context.Background()

	known, err := r.IsKnown(ctx, "U1")
	if err != nil || !known {
		t.Errorf("IsKnown(U1) = %v, %v, expected true", known, err)
	}

	known, err = r.IsKnown(ctx, "U404")
	if err != nil || known {
		t.Errorf("IsKnown(U404) = %v, %v, expected false", known, err)
	}
}

func TestIsKnownWithoutMainSheet(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	known, err := r.IsKnown(context.Background(), "U1")
	if err != nil || known {
		t.Errorf("IsKnown = %v, %v, expected false on a fresh workbook", known, err)
	}
}

func TestResolveCreatesRecordAndHistory(t *testing.T) {
	r, wb := newTestResolver(t, nil)
	ctx := context.Background()

	row, err := r.Resolve(ctx, "U1", "alice")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if row != 1 {
		t.Errorf("expected row 1, actual %d", row)
	}

	rec, err := r.Record(ctx, "U1")
	if err != nil || rec == nil {
		t.Fatalf("Record: %v, %v", rec, err)
	}
	if rec.DisplayName != "alice" {
		t.Errorf("DisplayName: expected %q, actual %q", "alice", rec.DisplayName)
	}

	g, err := wb.Grid(ctx, "U1")
	if err != nil {
		t.Fatalf("history sheet missing: %v", err)
	}
	h := sheet.New("U1", g)
	if h.DataRows() != 1 {
		t.Errorf("history: expected 1 seed entry, actual %d", h.DataRows())
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r, wb := newTestResolver(t, nil)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "U1", "alice")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	before, _ := wb.Grid(ctx, mainName)
	beforeHist, _ := wb.Grid(ctx, "U1")

	second, err := r.Resolve(ctx, "U1", "alice")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first != second {
		t.Errorf("expected row %d both times, actual %d", first, second)
	}

	after, _ := wb.Grid(ctx, mainName)
	afterHist, _ := wb.Grid(ctx, "U1")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("main sheet mutated on second resolve:\nbefore %v\nafter  %v", before, after)
	}
	if !reflect.DeepEqual(beforeHist, afterHist) {
		t.Errorf("history mutated on second resolve:\nbefore %v\nafter  %v", beforeHist, afterHist)
	}
}

func TestResolveAppropriatesUnclaimedRow(t *testing.T) {
	r, wb := newTestResolver(t, sheet.Grid{
		{ColUID, ColWriter, ColGoal, ColDate},
		{"", "shaun", "old goal", ""},
	})
	ctx := context.Background()

	row, err := r.Resolve(ctx, "U999", "shaunc")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if row != 1 {
		t.Errorf("expected appropriated row 1, actual %d", row)
	}

	g, _ := wb.Grid(ctx, mainName)
	s := sheet.New(mainName, g)
	if s.NumRows() != 2 {
		t.Errorf("expected no new row, actual %d rows", s.NumRows())
	}
	if got := s.Fields(1, ColUID); got[0] != "U999" {
		t.Errorf("expected claimed UID %q, actual %q", "U999", got[0])
	}

	// the pre-existing goal seeds the history log
	hg, err := wb.Grid(ctx, "U999")
	if err != nil {
		t.Fatalf("history sheet missing: %v", err)
	}
	h := sheet.New("U999", hg)
	if got := h.Fields(h.FirstDataRow(), "Goal"); got[0] != "old goal" {
		t.Errorf("history seed: expected %q, actual %q", "old goal", got[0])
	}
}

func TestResolveSkipsClaimedRows(t *testing.T) {
	r, wb := newTestResolver(t, sheet.Grid{
		{ColUID, ColWriter, ColGoal, ColDate},
		{"U1", "shaun", "", ""},
	})
	ctx := context.Background()

	row, err := r.Resolve(ctx, "U999", "shaunc")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if row != 2 {
		t.Errorf("expected a fresh row 2, actual %d", row)
	}

	g, _ := wb.Grid(ctx, mainName)
	s := sheet.New(mainName, g)
	if got := s.Fields(1, ColUID); got[0] != "U1" {
		t.Errorf("claimed row was overwritten: %q", got[0])
	}
}

func TestResolveFirstSubstringMatchWins(t *testing.T) {
	r, wb := newTestResolver(t, sheet.Grid{
		{ColUID, ColWriter, ColGoal, ColDate},
		{"", "sha", "", ""},
		{"", "shaun", "", ""},
	})

	row, err := r.Resolve(context.Background(), "U999", "shaunc")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// row 1 matches first even though row 2 is the longer match
	if row != 1 {
		t.Errorf("expected row 1, actual %d", row)
	}

	g, _ := wb.Grid(context.Background(), mainName)
	s := sheet.New(mainName, g)
	if got := s.Fields(2, ColUID); got[0] != "" {
		t.Errorf("second candidate should stay unclaimed, actual %q", got[0])
	}
}

func TestDuplicateUIDsResolveToLowestRow(t *testing.T) {
	r, _ := newTestResolver(t, sheet.Grid{
		{ColUID, ColWriter, ColGoal, ColDate},
		{"U1", "alice", "first", ""},
		{"U1", "alice again", "second", ""},
	})

	row, err := r.Resolve(context.Background(), "U1", "alice")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if row != 1 {
		t.Errorf("expected first occurrence row 1, actual %d", row)
	}
}

func TestSetGoalAndHistory(t *testing.T) {
	r, _ := newTestResolver(t, nil)
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "U1", "alice"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	if err := r.SetGoal(ctx, "U1", "write every day", now); err != nil {
		t.Fatalf("SetGoal: %v", err)
	}

	rec, err := r.Record(ctx, "U1")
	if err != nil || rec == nil {
		t.Fatalf("Record: %v, %v", rec, err)
	}
	if rec.Goal != "write every day" {
		t.Errorf("Goal: expected %q, actual %q", "write every day", rec.Goal)
	}
	if !rec.GoalSetAt.Equal(now) {
		t.Errorf("GoalSetAt: expected %v, actual %v", now, rec.GoalSetAt)
	}

	entries, err := r.History(ctx, "U1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	// the connect seed plus the new entry
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, actual %d", len(entries))
	}
	last := entries[len(entries)-1]
	if last.Goal != "write every day" || !last.Date.Equal(now) {
		t.Errorf("last entry: expected (%v, %q), actual (%v, %q)", now, "write every day", last.Date, last.Goal)
	}
}

func TestRecordMissIsNil(t *testing.T) {
	r, _ := newTestResolver(t, sheet.Grid{{ColUID, ColWriter, ColGoal, ColDate}})

	rec, err := r.Record(context.Background(), "U404")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, actual %+v", rec)
	}
}
