package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists sessions and exchanges in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			next_seq INT NOT NULL DEFAULT 0,
			started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_activity_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS exchanges (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INT NOT NULL,
			user_input TEXT NOT NULL,
			emotion TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			response TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_exchanges_session_seq ON exchanges (session_id, seq);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, sessionID, userID string) (*Session, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s.Get(ctx, sessionID)
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	sess := &Session{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, next_seq, started_at, last_activity_at FROM sessions WHERE id=$1`,
		sessionID,
	).Scan(&sess.ID, &sess.UserID, &sess.NextSeq, &sess.StartedAt, &sess.LastActivityAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, seq, user_input, emotion, confidence, response, created_at
		 FROM exchanges WHERE session_id=$1 ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.ID, &ex.Seq, &ex.UserInput, &ex.Emotion, &ex.Confidence, &ex.Response, &ex.Timestamp); err != nil {
			return nil, fmt.Errorf("scan exchange row: %w", err)
		}
		sess.Exchanges = append(sess.Exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchange rows: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) Append(ctx context.Context, sessionID string, ex Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	// Unknown sessions are created implicitly on first append.
	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		sessionID); err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	var seq int
	if err := tx.QueryRow(ctx,
		`UPDATE sessions SET next_seq = next_seq + 1, last_activity_at = $2 WHERE id=$1 RETURNING next_seq - 1`,
		sessionID, ex.Timestamp,
	).Scan(&seq); err != nil {
		return fmt.Errorf("allocate seq: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO exchanges (id, session_id, seq, user_input, emotion, confidence, response, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ex.ID, sessionID, seq, ex.UserInput, string(ex.Emotion), ex.Confidence, ex.Response, ex.Timestamp,
	); err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *PostgresStore) Trim(ctx context.Context, sessionID string, max int) error {
	if max <= 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM exchanges WHERE session_id=$1 AND seq < (
			SELECT COALESCE(MIN(seq), 0) FROM (
				SELECT seq FROM exchanges WHERE session_id=$1 ORDER BY seq DESC LIMIT $2
			) recent
		)`,
		sessionID, max)
	if err != nil {
		return fmt.Errorf("trim exchanges: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
