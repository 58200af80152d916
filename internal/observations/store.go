package observations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/monitoring"
	"github.com/banshee-data/heatmap.report/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// recordedAtLayout matches SQLite's CURRENT_TIMESTAMP format.
const recordedAtLayout = "2006-01-02 15:04:05"

// Store persists observations in a SQLite database.
type Store struct {
	*sql.DB

	// Clock stamps recorded_at on inserted rows.
	Clock timeutil.Clock
}

// BatchInfo summarises one import.
type BatchInfo struct {
	ID         string
	Count      int
	RecordedAt time.Time
}

// OpenStore opens (or creates) the SQLite database at path and applies any
// pending schema migrations.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db, Clock: timeutil.RealClock{}}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp runs all pending migrations. Already being at the latest
// version is not an error.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close the underlying DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current schema version and dirty state.
// Returns 0, false, nil if no migrations have been applied yet.
func (s *Store) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{logf: monitoring.WithPrefix("[migrate] ")}
	return m, nil
}

// migrateLogger implements migrate.Logger on top of monitoring.Logf.
type migrateLogger struct {
	logf func(format string, v ...interface{})
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logf(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Insert stores obs in a single transaction tagged with a fresh batch ID,
// which is returned.
func (s *Store) Insert(ctx context.Context, obs []heatmap.Observation) (string, error) {
	batchID := uuid.NewString()
	recordedAt := s.Clock.Now().UTC().Format(recordedAtLayout)

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO interactions (x, y, users_relative, batch_id, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.X, o.Y, o.UsersRelative, batchID, recordedAt); err != nil {
			return "", fmt.Errorf("failed to insert observation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit observations: %w", err)
	}
	return batchID, nil
}

// All returns every stored observation in insertion order.
func (s *Store) All() ([]heatmap.Observation, error) {
	return s.query("SELECT x, y, users_relative FROM interactions ORDER BY id")
}

// Batch returns the observations inserted under batchID.
func (s *Store) Batch(batchID string) ([]heatmap.Observation, error) {
	return s.query("SELECT x, y, users_relative FROM interactions WHERE batch_id = ? ORDER BY id", batchID)
}

// Batches lists every import in the order it was made.
func (s *Store) Batches(ctx context.Context) ([]BatchInfo, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT batch_id, COUNT(*), MIN(recorded_at)
		FROM interactions
		GROUP BY batch_id
		ORDER BY MIN(id)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []BatchInfo
	for rows.Next() {
		var (
			b  BatchInfo
			ts sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Count, &ts); err != nil {
			return nil, err
		}
		if ts.Valid {
			if b.RecordedAt, err = time.Parse(recordedAtLayout, ts.String); err != nil {
				return nil, fmt.Errorf("batch %s: invalid recorded_at %q: %w", b.ID, ts.String, err)
			}
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Count returns the number of stored observations.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.QueryRow("SELECT COUNT(*) FROM interactions").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) query(q string, args ...interface{}) ([]heatmap.Observation, error) {
	rows, err := s.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []heatmap.Observation
	for rows.Next() {
		var o heatmap.Observation
		if err := rows.Scan(&o.X, &o.Y, &o.UsersRelative); err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return obs, nil
}
