package store

import (
	"context"
	"sort"
	"sync"

	"github.com/gobridge/goalkeeper/sheet"
)

// Memory is an in-memory Workbook. State is lost on restart; it exists for
// tests and for trying the service out without credentials.
type Memory struct {
	mu     sync.Mutex
	sheets map[string]sheet.Grid
}

// NewMemory returns an empty in-memory workbook.
func NewMemory() *Memory {
	return &Memory{sheets: make(map[string]sheet.Grid)}
}

func (m *Memory) Grid(ctx context.Context, name string) (sheet.Grid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.sheets[name]
	if !ok {
		return nil, ErrNoSheet
	}
	return g.Clone(), nil
}

func (m *Memory) PutGrid(ctx context.Context, name string, g sheet.Grid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[name] = g.Clone()
	return nil
}

func (m *Memory) SheetNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.sheets))
	for name := range m.sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
