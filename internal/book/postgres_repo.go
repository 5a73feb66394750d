package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, title, author, status, isbn, cover_url, rating, pages_total, pages_read,
	date_started, date_read, date_added, genre, series, series_order, edition, book_type,
	notes, quotes, updated_at`

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

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", argn))
		args = append(args, string(q.Status))
		argn++
	}

	if q.ExcludeStatus != "" {
		clauses = append(clauses, fmt.Sprintf("status <> $%d", argn))
		args = append(args, string(q.ExcludeStatus))
		argn++
	}

	if q.Series != "" {
		clauses = append(clauses, fmt.Sprintf("series = $%d", argn))
		args = append(args, q.Series)
		argn++
	}

	if q.Untagged {
		clauses = append(clauses, "series = ''")
	}

	if q.Q != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d OR isbn LIKE $%d)", argn, argn, argn))
		args = append(args, "%"+likeEscaper.Replace(q.Q)+"%")
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	dataSQL := fmt.Sprintf("SELECT %s FROM books %s ORDER BY date_added DESC, id", bookColumns, where)
	if q.Limit > 0 {
		dataSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argn, argn+1)
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.db.Query(timeoutCtx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	var status string
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &status, &b.ISBN, &b.CoverURL, &b.Rating, &b.PagesTotal, &b.PagesRead,
		&b.DateStarted, &b.DateRead, &b.DateAdded, &b.Genre, &b.Series, &b.SeriesOrder, &b.Edition, &b.BookType,
		&b.Notes, &b.Quotes, &b.UpdatedAt,
	)
	b.Status = Status(status)
	return b, err
}

func (r *PostgresRepo) getOne(ctx context.Context, where string, arg any) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM books WHERE %s ORDER BY date_added LIMIT 1", bookColumns, where)
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Book, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *PostgresRepo) FindByISBN(ctx context.Context, isbn string) (Book, error) {
	return r.getOne(ctx, "isbn = $1", isbn)
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const sql = `
		INSERT INTO books (id, title, author, status, isbn, cover_url, rating, pages_total, pages_read,
		                   date_started, date_read, date_added, genre, series, series_order, edition,
		                   book_type, notes, quotes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql,
		b.ID, b.Title, b.Author, string(b.Status), b.ISBN, b.CoverURL, b.Rating, b.PagesTotal, b.PagesRead,
		b.DateStarted, b.DateRead, b.DateAdded, b.Genre, b.Series, b.SeriesOrder, b.Edition,
		b.BookType, b.Notes, b.Quotes, b.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	const sql = `
		UPDATE books SET
			title = $2, author = $3, status = $4, isbn = $5, cover_url = $6, rating = $7,
			pages_total = $8, pages_read = $9, date_started = $10, date_read = $11, genre = $12,
			series = $13, series_order = $14, edition = $15, book_type = $16, notes = $17,
			quotes = $18, updated_at = $19
		WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql,
		b.ID, b.Title, b.Author, string(b.Status), b.ISBN, b.CoverURL, b.Rating,
		b.PagesTotal, b.PagesRead, b.DateStarted, b.DateRead, b.Genre,
		b.Series, b.SeriesOrder, b.Edition, b.BookType, b.Notes,
		b.Quotes, b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
