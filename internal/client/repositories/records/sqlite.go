package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/dbx"
	"github.com/google/uuid"
)

// SQLiteRepository stores envelopes in the envelopes table. Positions are
// assigned inside a transaction and protected by UNIQUE(category, seq).
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, category models.Category, env models.Envelope) error {
	if err := checkCategory(category); err != nil {
		return err
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var next int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1 FROM envelopes WHERE category = ?`, category).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to compute next position: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO envelopes (id, category, seq, ciphertext, timestamp, employee_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			env.ID, category, next, env.Ciphertext, env.Timestamp.UTC().Format(time.RFC3339Nano), env.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to append envelope: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) ReadAll(ctx context.Context, category models.Category) ([]models.Envelope, error) {
	if err := checkCategory(category); err != nil {
		return []models.Envelope{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ciphertext, timestamp, employee_id FROM envelopes
		WHERE category = ? ORDER BY seq`, category)
	if err != nil {
		return []models.Envelope{}, degraded(category, err)
	}
	defer rows.Close()

	result := []models.Envelope{}
	for rows.Next() {
		var (
			e  models.Envelope
			ts string
		)
		if err := rows.Scan(&e.ID, &e.Ciphertext, &ts, &e.EmployeeID); err != nil {
			return []models.Envelope{}, degraded(category, err)
		}
		// the cleartext timestamp is informational; a bad value stays zero
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return []models.Envelope{}, degraded(category, err)
	}
	return result, nil
}
