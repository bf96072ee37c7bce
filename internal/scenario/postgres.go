package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS scenarios (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	dial_values JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scenarios_user_updated ON scenarios(user_id, updated_at DESC);
`

// PostgresStore persists scenarios in Postgres through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects using a DATABASE_URL-style connection string and
// ensures the schema exists.
func OpenPostgres(ctx context.Context, dbURL string) (*PostgresStore, error) {
	if dbURL == "" {
		return nil, errors.New("database url is empty")
	}
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, sc Scenario) error {
	dial, err := encodeDialValues(sc.DialValues)
	if err != nil {
		return fmt.Errorf("encoding dial values: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO scenarios (id, user_id, name, dial_values, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sc.ID, sc.UserID, sc.Name, dial, sc.CreatedAt, sc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Scenario, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, dial_values, created_at, updated_at FROM scenarios WHERE id = $1`, id)
	sc, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Scenario{}, ErrNotFound
	}
	return sc, err
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Scenario, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, dial_values, created_at, updated_at FROM scenarios
		 WHERE user_id = $1 ORDER BY updated_at DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	out := make([]Scenario, 0)
	for rows.Next() {
		sc, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, sc Scenario) error {
	dial, err := encodeDialValues(sc.DialValues)
	if err != nil {
		return fmt.Errorf("encoding dial values: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE scenarios SET name = $1, dial_values = $2, updated_at = $3 WHERE id = $4`,
		sc.Name, dial, sc.UpdatedAt, sc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgres(r pgx.Row) (Scenario, error) {
	var (
		sc   Scenario
		dial []byte
	)
	if err := r.Scan(&sc.ID, &sc.UserID, &sc.Name, &dial, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return Scenario{}, err
	}
	a, err := decodeDialValues(dial)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: decoding dial values: %w", sc.ID, err)
	}
	sc.DialValues = a
	sc.CreatedAt = sc.CreatedAt.UTC()
	sc.UpdatedAt = sc.UpdatedAt.UTC()
	return sc, nil
}
