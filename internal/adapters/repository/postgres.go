package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/fishery/internal/domain/model"
)

// PostgresStore talks to the managed database's Postgres endpoint directly.
// Column names are mixed case, so every identifier is quoted.
type PostgresStore struct {
	pool *pgxpool.Pool

	listSQL   string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// NewPostgresStore connects to dsn and returns a store over a pgx pool.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return NewPostgresStoreFromPool(pool, opts...), nil
}

// NewPostgresStoreFromPool wraps an existing pool. Close closes the pool.
func NewPostgresStoreFromPool(pool *pgxpool.Pool, opts ...Option) *PostgresStore {
	o := applyOptions(opts)
	table := pgx.Identifier(strings.Split(o.table, ".")).Sanitize()
	col := func(name string) string { return pgx.Identifier{name}.Sanitize() }

	id, name, sell, shadow, where := col(model.FieldID), col(model.FieldName), col(model.FieldSell), col(model.FieldShadow), col(model.FieldWhere)

	columns := model.Columns()
	selected := make([]string, len(columns))
	for i, c := range columns {
		selected[i] = col(c)
	}

	return &PostgresStore{
		pool: pool,
		listSQL: fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC, %s ASC`,
			strings.Join(selected, ", "), table, name, id),
		insertSQL: fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
			table, name, sell, shadow, where),
		updateSQL: fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4 WHERE %s = $5`,
			table, name, sell, shadow, where, id),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, id),
	}
}

// List selects every record ordered by Name.
func (s *PostgresStore) List(ctx context.Context) ([]model.FishRecord, error) {
	rows, err := s.pool.Query(ctx, s.listSQL)
	if err != nil {
		return nil, pgStoreError("list", err)
	}
	defer rows.Close()

	out := make([]model.FishRecord, 0, 64)
	for rows.Next() {
		var rec model.FishRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Sell, &rec.Shadow, &rec.Where); err != nil {
			return nil, pgStoreError("list", fmt.Errorf("scanning fish row: %w", err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, pgStoreError("list", err)
	}
	return out, nil
}

// Create inserts rec; the table's identity column assigns the Id.
func (s *PostgresStore) Create(ctx context.Context, rec model.FishRecord) error {
	if _, err := s.pool.Exec(ctx, s.insertSQL, rec.Name, rec.Sell, rec.Shadow, rec.Where); err != nil {
		return pgStoreError("create", err)
	}
	return nil
}

// Update rewrites the record with rec.ID. Zero affected rows is not an error.
func (s *PostgresStore) Update(ctx context.Context, rec model.FishRecord) error {
	if _, err := s.pool.Exec(ctx, s.updateSQL, rec.Name, rec.Sell, rec.Shadow, rec.Where, rec.ID); err != nil {
		return pgStoreError("update", err)
	}
	return nil
}

// Delete removes the record with id. Zero affected rows is not an error.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, s.deleteSQL, id); err != nil {
		return pgStoreError("delete", err)
	}
	return nil
}

// Ping checks a pooled connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return pgStoreError("ping", err)
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// pgStoreError keeps the server's message text when Postgres reported one.
func pgStoreError(op string, err error) *StoreError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return newStoreError(op, pgErr.Code, pgErr.Message, err)
	}
	return newStoreError(op, "", err.Error(), err)
}
