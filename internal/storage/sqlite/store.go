// Package sqlite provides a SQLite-backed scenario store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pefman/cr-calc/internal/models"
	"github.com/pefman/cr-calc/internal/storage"
	"github.com/pefman/cr-calc/internal/storage/sqlite/migrations"
)

// Store persists scenarios in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Repo = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite scenario store and applies embedded migrations.
// The path ":memory:" gives a throwaway database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Save(ctx context.Context, sc storage.Scenario) (storage.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return storage.Scenario{}, err
	}
	sc, err := storage.Validate(sc)
	if err != nil {
		return storage.Scenario{}, err
	}
	attacks, err := json.Marshal(sc.Attacks)
	if err != nil {
		return storage.Scenario{}, fmt.Errorf("encode attacks: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO scenarios (name, defence_id, attacks_json, created_at) VALUES (?, ?, ?, ?)`,
		sc.Name, sc.DefenceID, string(attacks), toMillis(sc.CreatedAt),
	)
	if err != nil {
		return storage.Scenario{}, fmt.Errorf("insert scenario: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storage.Scenario{}, fmt.Errorf("scenario id: %w", err)
	}
	sc.ID = id
	sc.CreatedAt = fromMillis(toMillis(sc.CreatedAt))
	return sc, nil
}

func (s *Store) Get(ctx context.Context, id int64) (storage.Scenario, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, defence_id, attacks_json, created_at FROM scenarios WHERE id = ?`, id)
	sc, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Scenario{}, fmt.Errorf("%w: %d", storage.ErrNotFound, id)
	}
	if err != nil {
		return storage.Scenario{}, fmt.Errorf("get scenario: %w", err)
	}
	return sc, nil
}

func (s *Store) List(ctx context.Context) ([]storage.Scenario, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, defence_id, attacks_json, created_at FROM scenarios ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	out := []storage.Scenario{}
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", storage.ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (storage.Scenario, error) {
	var (
		sc        storage.Scenario
		attacks   string
		createdAt int64
	)
	if err := row.Scan(&sc.ID, &sc.Name, &sc.DefenceID, &attacks, &createdAt); err != nil {
		return storage.Scenario{}, err
	}
	sc.Attacks = []models.AttackSelection{}
	if err := json.Unmarshal([]byte(attacks), &sc.Attacks); err != nil {
		return storage.Scenario{}, fmt.Errorf("decode attacks: %w", err)
	}
	sc.CreatedAt = fromMillis(createdAt)
	return sc, nil
}
