package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/project"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS forecast_projects (
	position        BIGSERIAL,
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	type            TEXT NOT NULL,
	segment         TEXT NOT NULL,
	client          TEXT NOT NULL,
	parent_client   TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL,
	probability     DOUBLE PRECISION NOT NULL,
	monthly_amount  DOUBLE PRECISION NOT NULL,
	start_year      INTEGER NOT NULL,
	start_month     TEXT NOT NULL,
	duration_months INTEGER NOT NULL,
	product         TEXT NOT NULL DEFAULT '',
	tcv             DOUBLE PRECISION NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const selectColumns = `id, name, type, segment, client, parent_client, country, probability,
	monthly_amount, start_year, start_month, duration_months, product, tcv`

// PostgresStore keeps the collection in a forecast_projects table. Rows are
// listed in insertion order.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects a pool to databaseURL.
func NewPostgresStore(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not configured")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the projects table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// List returns every project in insertion order. It runs in a single
// statement, so it observes one consistent snapshot.
func (s *PostgresStore) List(ctx context.Context) ([]project.Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM forecast_projects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Get returns the project with the given id.
func (s *PostgresStore) Get(ctx context.Context, id string) (project.Project, error) {
	return getProject(ctx, s.pool, id, "")
}

// Add validates p, assigns an id when missing and inserts it.
func (s *PostgresStore) Add(ctx context.Context, p project.Project) (project.Project, error) {
	ready, err := prepare(p)
	if err != nil {
		return project.Project{}, err
	}
	if err := insertProject(ctx, s.pool, ready); err != nil {
		return project.Project{}, err
	}
	s.logger.Debug("project added",
		zap.String("op", "store.PostgresStore.Add"),
		zap.String("id", ready.ID),
	)
	return ready, nil
}

// Update applies patch inside a transaction holding a row lock.
func (s *PostgresStore) Update(ctx context.Context, id string, patch project.Patch) (project.Project, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	current, err := getProject(ctx, tx, id, " FOR UPDATE")
	if err != nil {
		return project.Project{}, err
	}
	ready, err := prepare(patch.Apply(current))
	if err != nil {
		return project.Project{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE forecast_projects SET
			name = $2, type = $3, segment = $4, client = $5, parent_client = $6, country = $7,
			probability = $8, monthly_amount = $9, start_year = $10, start_month = $11,
			duration_months = $12, product = $13, tcv = $14, updated_at = NOW()
		WHERE id = $1`,
		ready.ID, ready.Name, string(ready.Type), string(ready.Segment), ready.Client, ready.ParentClient,
		string(ready.Country), ready.Probability, ready.MonthlyAmount, ready.StartYear,
		string(ready.StartMonth), ready.DurationMonths, ready.Product, ready.TCV,
	)
	if err != nil {
		return project.Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return project.Project{}, fmt.Errorf("failed to commit update: %w", err)
	}
	return ready, nil
}

// Delete removes the project with the given id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM forecast_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset replaces the table contents with seed in one transaction.
func (s *PostgresStore) Reset(ctx context.Context, seed []project.Project) error {
	prepared := prepareSeed(seed, s.logger)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM forecast_projects`); err != nil {
		return fmt.Errorf("failed to clear projects: %w", err)
	}
	for _, p := range prepared {
		if err := insertProject(ctx, tx, p); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	s.logger.Info("project table reset",
		zap.String("op", "store.PostgresStore.Reset"),
		zap.Int("projects", len(prepared)),
	)
	return nil
}

// SeedIfEmpty loads seed into an empty table. A table that already holds
// projects is left untouched.
func (s *PostgresStore) SeedIfEmpty(ctx context.Context, seed []project.Project) error {
	if len(seed) == 0 {
		return nil
	}
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM forecast_projects`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.Reset(ctx, seed)
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getProject(ctx context.Context, q querier, id, suffix string) (project.Project, error) {
	row := q.QueryRow(ctx, `SELECT `+selectColumns+` FROM forecast_projects WHERE id = $1`+suffix, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, ErrNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func insertProject(ctx context.Context, q querier, p project.Project) error {
	_, err := q.Exec(ctx, `
		INSERT INTO forecast_projects (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Name, string(p.Type), string(p.Segment), p.Client, p.ParentClient,
		string(p.Country), p.Probability, p.MonthlyAmount, p.StartYear,
		string(p.StartMonth), p.DurationMonths, p.Product, p.TCV,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateID
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	var typ, segment, country, month string
	err := row.Scan(
		&p.ID, &p.Name, &typ, &segment, &p.Client, &p.ParentClient, &country,
		&p.Probability, &p.MonthlyAmount, &p.StartYear, &month, &p.DurationMonths,
		&p.Product, &p.TCV,
	)
	if err != nil {
		return project.Project{}, err
	}
	p.Type = project.Type(typ)
	p.Segment = project.Segment(segment)
	p.Country = project.Country(country)
	p.StartMonth = project.Month(month)
	return p, nil
}
