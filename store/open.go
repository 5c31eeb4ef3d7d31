package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/option"

	"github.com/gobridge/goalkeeper/config"
)

// Open builds the Workbook selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Workbook, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	case "datastore":
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		ds, err := datastore.NewClient(ctx, cfg.Project, opts...)
		if err != nil {
			return nil, fmt.Errorf("building datastore client: %w", err)
		}
		return NewDatastore(ds), nil
	case "gsheets":
		return NewGoogleSheets(ctx, cfg.SpreadsheetID, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
