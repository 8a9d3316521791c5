package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

const createCalculations = `CREATE TABLE IF NOT EXISTS calculations (
	id BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL DEFAULT 'flat_rate',
	input TEXT NOT NULL,
	result TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Repos struct {
	db *sqlx.DB

	schemaMu    sync.Mutex
	schemaReady bool
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

type calculationRow struct {
	ID        int64     `db:"id"`
	Kind      string    `db:"kind"`
	Input     string    `db:"input"`
	Result    string    `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

// ensureSchema creates the calculations table on first use. A failed attempt
// is retried on the next call.
func (r *Repos) ensureSchema(ctx context.Context) error {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()
	if r.schemaReady {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, createCalculations); err != nil {
		return fmt.Errorf("failed to create calculations table: %w", err)
	}
	r.schemaReady = true
	return nil
}

// Append implements audit.Sink. Rows are only ever inserted.
func (r *Repos) Append(ctx context.Context, calc domain.Calculation) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calculations(kind, input, result, created_at) VALUES ($1,$2,$3,$4)`,
		calc.Kind, string(calc.Input), string(calc.Result), calc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert calculation: %w", err)
	}
	return nil
}

// RecentCalculations returns up to limit rows, newest first.
func (r *Repos) RecentCalculations(ctx context.Context, limit int) ([]domain.Calculation, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var rows []calculationRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, kind, input, result, created_at FROM calculations ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	out := make([]domain.Calculation, len(rows))
	for i, row := range rows {
		out[i] = domain.Calculation{
			ID:        row.ID,
			Kind:      row.Kind,
			Input:     []byte(row.Input),
			Result:    []byte(row.Result),
			CreatedAt: row.CreatedAt,
		}
	}
	return out, nil
}
