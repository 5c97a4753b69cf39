package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// documentPath identifies the single shared document all replicas use.
const documentPath = "appData/main"

// notifyChannel carries change notifications between replicas. NOTIFY
// payloads are size-limited, so only the savedAt stamp travels in them;
// subscribers re-fetch the document on wakeup.
const notifyChannel = "invoice_sync_changed"

// PostgresStore keeps the remote document in a single-row table and fans
// out changes with LISTEN/NOTIFY.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresStore connects to the database and ensures the document
// table exists.
func NewPostgresStore(ctx context.Context, connString string, log zerolog.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, log: log}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sync_documents (
			path     text  PRIMARY KEY,
			envelope jsonb NOT NULL,
			saved_at text  NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sync_documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Fetch(ctx context.Context) (*Envelope, error) {
	var env Envelope
	err := s.pool.QueryRow(ctx,
		"SELECT envelope FROM sync_documents WHERE path = $1", documentPath,
	).Scan(&env)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote document: %w", err)
	}
	return &env, nil
}

// Save upserts the document and notifies in the same transaction, so a
// listener that wakes up always finds at least this version.
func (s *PostgresStore) Save(ctx context.Context, env *Envelope) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO sync_documents (path, envelope, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE
		SET envelope = EXCLUDED.envelope, saved_at = EXCLUDED.saved_at
	`, documentPath, env, env.SavedAt); err != nil {
		return fmt.Errorf("failed to write remote document: %w", err)
	}
	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, env.SavedAt); err != nil {
		return fmt.Errorf("failed to notify listeners: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit remote write: %w", err)
	}
	return nil
}

// Subscribe dedicates one connection to LISTEN and re-fetches the document
// on every notification. The channel buffers a single envelope; when the
// consumer lags, the stale buffered version is replaced by the newer one.
func (s *PostgresStore) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to LISTEN on %s: %w", notifyChannel, err)
	}

	ch := make(chan Envelope, 1)
	go func() {
		defer close(ch)
		defer conn.Release()
		for {
			if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
				if ctx.Err() == nil {
					s.log.Warn().Err(err).Msg("notification wait failed, subscription closed")
				}
				return
			}
			env, err := s.Fetch(ctx)
			if err != nil {
				s.log.Warn().Err(err).Msg("failed to fetch document after notification")
				continue
			}
			if env == nil {
				continue
			}
			select {
			case ch <- *env:
			default:
				select {
				case <-ch:
				default:
				}
				ch <- *env
			}
		}
	}()
	return ch, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
