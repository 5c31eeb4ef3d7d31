package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/iterator"

	"github.com/gobridge/goalkeeper/sheet"
)

// storedSheet is the entity form of one sheet: the whole grid as JSON.
type storedSheet struct {
	Cells     []byte    `datastore:"Cells,noindex"`
	UpdatedAt time.Time `datastore:"UpdatedAt"`
}

// Datastore is a Workbook that keeps sheets in Google Cloud Datastore, one
// entity per sheet keyed by sheet name.
type Datastore struct {
	ds   *datastore.Client
	kind string
}

// NewDatastore constructs a new *Datastore.
func NewDatastore(ds *datastore.Client) *Datastore {
	return &Datastore{
		ds:   ds,
		kind: "Sheet",
	}
}

func (s *Datastore) Grid(ctx context.Context, name string) (sheet.Grid, error) {
	var ent storedSheet
	err := s.ds.Get(ctx, s.key(name), &ent)
	if err == datastore.ErrNoSuchEntity {
		return nil, ErrNoSheet
	}
	if err != nil {
		return nil, fmt.Errorf("loading sheet %q: %w", name, err)
	}

	var g sheet.Grid
	if err := json.Unmarshal(ent.Cells, &g); err != nil {
		return nil, fmt.Errorf("decoding sheet %q: %w", name, err)
	}
	return g, nil
}

func (s *Datastore) PutGrid(ctx context.Context, name string, g sheet.Grid) error {
	cells, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding sheet %q: %w", name, err)
	}

	_, err = s.ds.Put(ctx, s.key(name), &storedSheet{Cells: cells, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("storing sheet %q: %w", name, err)
	}
	return nil
}

func (s *Datastore) SheetNames(ctx context.Context) ([]string, error) {
	q := datastore.NewQuery(s.kind).KeysOnly()
	it := s.ds.Run(ctx, q)

	var names []string
	for {
		key, err := it.Next(nil)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing sheets: %w", err)
		}
		names = append(names, key.Name)
	}
	return names, nil
}

func (s *Datastore) key(name string) *datastore.Key {
	return datastore.NameKey(s.kind, name, nil)
}
