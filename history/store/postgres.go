package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/history"
)

// PostgresStore keeps records in a PostgreSQL table
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns default PostgreSQL configuration
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "chatbot_factory",
		SSLMode:  "disable",
	}
}

// DSN renders the lib/pq connection string
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// NewPostgresStore connects to PostgreSQL and creates the table if needed
func NewPostgresStore(ctx context.Context, config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}

	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS generations (
		id VARCHAR(64) PRIMARY KEY,
		run_id VARCHAR(64) NOT NULL,
		name TEXT NOT NULL,
		chatbot_type VARCHAR(64) NOT NULL,
		success BOOLEAN NOT NULL,
		message TEXT NOT NULL,
		files_generated INTEGER NOT NULL,
		output_path TEXT NOT NULL,
		docker_image TEXT NOT NULL DEFAULT '',
		artifact_prefix TEXT NOT NULL DEFAULT '',
		errors TEXT[] NOT NULL DEFAULT '{}',
		duration_ms BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

const recordColumns = `id, run_id, name, chatbot_type, success, message, files_generated,
	output_path, docker_image, artifact_prefix, errors, duration_ms, created_at`

// Save upserts the record by ID
func (s *PostgresStore) Save(ctx context.Context, rec *history.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil: %w", fterrors.ErrInvalidInput)
	}
	history.Prepare(rec)

	errs := rec.Errors
	if errs == nil {
		errs = []string{}
	}

	query := `INSERT INTO generations (` + recordColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		success = EXCLUDED.success,
		message = EXCLUDED.message,
		files_generated = EXCLUDED.files_generated,
		output_path = EXCLUDED.output_path,
		docker_image = EXCLUDED.docker_image,
		artifact_prefix = EXCLUDED.artifact_prefix,
		errors = EXCLUDED.errors,
		duration_ms = EXCLUDED.duration_ms`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.RunID, rec.Name, rec.Type, rec.Success, rec.Message, rec.FilesGenerated,
		rec.OutputPath, rec.DockerImage, rec.ArtifactPrefix, pq.Array(errs),
		rec.Duration.Milliseconds(), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*history.Record, error) {
	var (
		rec        history.Record
		durationMs int64
		errs       pq.StringArray
	)
	if err := row.Scan(&rec.ID, &rec.RunID, &rec.Name, &rec.Type, &rec.Success, &rec.Message,
		&rec.FilesGenerated, &rec.OutputPath, &rec.DockerImage, &rec.ArtifactPrefix,
		&errs, &durationMs, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Errors = []string(errs)
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	return &rec, nil
}

// Get returns the record with the given ID
func (s *PostgresStore) Get(ctx context.Context, id string) (*history.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM generations WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", id, fterrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// List returns the newest records first
func (s *PostgresStore) List(ctx context.Context, limit int) ([]*history.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM generations ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]*history.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping checks if the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
