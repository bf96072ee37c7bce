package scenario

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scenarios (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	dial_values TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scenarios_user_updated ON scenarios(user_id, updated_at DESC);
`

// sqliteTimeLayout is fixed-width so text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists scenarios in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. ":memory:" is supported
// and pinned to a single connection.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating scenario db dir: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening scenario db: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, sc Scenario) error {
	dial, err := encodeDialValues(sc.DialValues)
	if err != nil {
		return fmt.Errorf("encoding dial values: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scenarios (id, user_id, name, dial_values, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.UserID, sc.Name, string(dial), fmtTime(sc.CreatedAt), fmtTime(sc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting scenario: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Scenario, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, dial_values, created_at, updated_at FROM scenarios WHERE id = ?`, id)
	sc, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, ErrNotFound
	}
	return sc, err
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, dial_values, created_at, updated_at FROM scenarios
		 WHERE user_id = ? ORDER BY updated_at DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]Scenario, 0)
	for rows.Next() {
		sc, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, sc Scenario) error {
	dial, err := encodeDialValues(sc.DialValues)
	if err != nil {
		return fmt.Errorf("encoding dial values: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE scenarios SET name = ?, dial_values = ?, updated_at = ? WHERE id = ?`,
		sc.Name, string(dial), fmtTime(sc.UpdatedAt), sc.ID,
	)
	if err != nil {
		return fmt.Errorf("updating scenario: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting scenario: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(r rowScanner) (Scenario, error) {
	var (
		sc               Scenario
		dial             string
		created, updated string
	)
	if err := r.Scan(&sc.ID, &sc.UserID, &sc.Name, &dial, &created, &updated); err != nil {
		return Scenario{}, err
	}
	a, err := decodeDialValues([]byte(dial))
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: decoding dial values: %w", sc.ID, err)
	}
	sc.DialValues = a
	if sc.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: created_at: %w", sc.ID, err)
	}
	if sc.UpdatedAt, err = time.Parse(sqliteTimeLayout, updated); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: updated_at: %w", sc.ID, err)
	}
	return sc, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
