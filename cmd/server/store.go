package main

import (
	"context"
	"fmt"
	"path/filepath"

	"miniminds/internal/platform/config"
	"miniminds/internal/platform/health"
	"miniminds/internal/platform/kvstore"
)

// openStore picks the audit queue backend named in cfg. The returned close
// function is never nil.
func openStore(ctx context.Context, cfg config.Audit, checks *health.Handler) (kvstore.Backend, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return kvstore.NewInMemory(), func() error { return nil }, nil
	case config.StoreFile:
		root := cfg.StorePath
		if filepath.Ext(root) != "" {
			root = filepath.Dir(root)
		}
		fs, err := kvstore.NewFileStore(root)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return fs, func() error { return nil }, nil
	default:
		db, err := kvstore.OpenSQLite(ctx, cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		checks.RegisterCheck("audit_store", db.Ping)
		return db, db.Close, nil
	}
}
