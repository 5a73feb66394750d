package goal

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Get(ctx context.Context, year int) (Goal, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var g Goal
	var updatedAt time.Time
	err := r.db.QueryRow(timeoutCtx,
		`SELECT year, amount, updated_at FROM reading_goals WHERE year = $1`, year,
	).Scan(&g.Year, &g.Amount, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Goal{}, ErrNotFound
		}
		return Goal{}, err
	}
	g.UpdatedAt = &updatedAt
	return g, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, g *Goal) error {
	const sql = `
		INSERT INTO reading_goals (year, amount, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (year) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = EXCLUDED.updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql, g.Year, g.Amount, g.UpdatedAt)
	return err
}
