// Package store opens the configured storage backend and hands out the
// repositories built on it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/config"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/repositories/records"

	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store bundles the repositories of one backend. Close releases the
// underlying connection, if any.
type Store struct {
	Records  records.Repository
	Metadata metadata.Repository

	// Quarantined is where an unreadable sqlite file was moved, if any.
	Quarantined string

	db *sql.DB
}

// test seams
var (
	sqlOpen       = sql.Open
	runMigrations = migrations.Up
	now           = time.Now
)

// Open connects to driver/dsn and, for SQL backends, applies migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case config.DriverSQLite:
		var aside string
		db, err := openSQL(ctx, "sqlite", dsn, migrations.DialectSQLite)
		if err != nil && isCorrupt(err) && isPlainPath(dsn) {
			// keep the unreadable file for an operator, start a new database
			if aside, err = quarantine(dsn); err != nil {
				return nil, err
			}
			db, err = openSQL(ctx, "sqlite", dsn, migrations.DialectSQLite)
		}
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
		return &Store{
			Records:     records.NewSQLiteRepository(db),
			Metadata:    metadata.NewSQLiteRepository(db),
			Quarantined: aside,
			db:          db,
		}, nil

	case config.DriverPostgres:
		db, err := openSQL(ctx, "pgx", dsn, migrations.DialectPostgres)
		if err != nil {
			return nil, err
		}
		return &Store{
			Records:  records.NewPostgresRepository(db),
			Metadata: metadata.NewPostgresRepository(db),
			db:       db,
		}, nil

	case config.DriverFile:
		r, err := records.NewFileRepository(dsn)
		if err != nil {
			return nil, err
		}
		return &Store{
			Records:  r,
			Metadata: metadata.NewFileRepository(filepath.Join(dsn, "metadata.json")),
		}, nil

	case config.DriverMemory:
		return &Store{
			Records:  records.NewMemoryRepository(),
			Metadata: metadata.NewMemoryRepository(),
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", driver)
}

func openSQL(ctx context.Context, driverName, dsn, dialect string) (*sql.DB, error) {
	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	if err := runMigrations(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", driverName, err)
	}

	return db, nil
}

// isCorrupt reports whether err is sqlite refusing the file contents.
func isCorrupt(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	}
	return false
}

// isPlainPath reports whether dsn names a file directly, without a URI
// scheme or query parameters.
func isPlainPath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, "?")
}

// quarantine renames the database file and its journals to
// <path>.corrupt-<unix> and returns the new name of the main file.
func quarantine(path string) (string, error) {
	suffix := fmt.Sprintf(".corrupt-%d", now().Unix())
	for _, side := range []string{"-journal", "-wal", "-shm"} {
		if err := os.Rename(path+side, path+side+suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("quarantine %s: %w", path+side, err)
		}
	}
	if err := os.Rename(path, path+suffix); err != nil {
		return "", fmt.Errorf("quarantine %s: %w", path, err)
	}
	return path + suffix, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
