package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"github.com/dmitrijs2005/fieldkeeper/internal/dbx"
)

// SQLRepository works against the metadata table of both SQL dialects; only
// the placeholder style differs.
type SQLRepository struct {
	db       dbx.DBTX
	getQuery string
	setQuery string
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{
		db:       db,
		getQuery: `SELECT value FROM metadata WHERE key = ?`,
		setQuery: `INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	}
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{
		db:       db,
		getQuery: `SELECT value FROM metadata WHERE key = $1`,
		setQuery: `INSERT INTO metadata (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
	}
}

func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, r.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, r.setQuery, key, value); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}
