package records

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/dbx"
	"github.com/google/uuid"
)

// PostgresRepository stores envelopes in a shared Postgres database. The
// BIGSERIAL seq column fixes insertion order, so appends from several client
// instances interleave without loss.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, category models.Category, env models.Envelope) error {
	if err := checkCategory(category); err != nil {
		return err
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}

	query := `INSERT INTO envelopes (id, category, ciphertext, recorded_at, employee_id)
		VALUES ($1, $2, $3, $4, $5)`
	res, err := r.db.ExecContext(ctx, query, env.ID, string(category), env.Ciphertext, env.Timestamp.UTC(), env.EmployeeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) ReadAll(ctx context.Context, category models.Category) ([]models.Envelope, error) {
	if err := checkCategory(category); err != nil {
		return []models.Envelope{}, err
	}

	query := `SELECT id, ciphertext, recorded_at, employee_id FROM envelopes
		WHERE category = $1 ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, string(category))
	if err != nil {
		return []models.Envelope{}, degraded(category, err)
	}
	defer rows.Close()

	result := []models.Envelope{}
	for rows.Next() {
		var e models.Envelope
		if err := rows.Scan(&e.ID, &e.Ciphertext, &e.Timestamp, &e.EmployeeID); err != nil {
			return []models.Envelope{}, degraded(category, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return []models.Envelope{}, degraded(category, err)
	}
	return result, nil
}
