package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	pgUndefinedTable = "42P01"
	documentRowID    = 1
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS inventory_state (
		id         SMALLINT PRIMARY KEY,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore keeps the document as a single JSONB row. It has the same
// seed and self-heal behaviour as FileStore.
type PostgresStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewPostgresStore(db *sql.DB, log *zap.Logger) *PostgresStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresStore{db: db, log: log}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, schemaSQL)
		return err
	})
}

func (s *PostgresStore) Load(ctx context.Context) (Document, error) {
	data, err := s.read(ctx)
	if isUndefinedTable(err) {
		if err := s.EnsureSchema(ctx); err != nil {
			return Document{}, fmt.Errorf("create inventory schema: %w", err)
		}
		data, err = s.read(ctx)
	}
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Info("inventory row missing, seeding defaults")
		d := DefaultDocument()
		if err := s.Save(ctx, d); err != nil {
			return Document{}, err
		}
		return d, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("read inventory: %w", err)
	}

	return decodeOrReset(ctx, s.log, "inventory_state", data, s.Save)
}

func (s *PostgresStore) Save(ctx context.Context, d Document) error {
	data, err := encodeDocument(d)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO inventory_state (id, doc, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (id) DO UPDATE
			SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
		`, documentRowID, string(data))
		return err
	})
	if err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	return nil
}

func (s *PostgresStore) read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT doc::text
			FROM inventory_state
			WHERE id = $1
		`, documentRowID).Scan(&data)
	})
	return data, err
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
