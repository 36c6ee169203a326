// Package auditstore persists verifier outcomes to PostgreSQL for after-the-
// fact audit queries. Adapted wholesale from the teacher's
// internal/db/postgres.go connection-pool and transaction-wrapped insert
// pattern, repurposed for verifier outcomes instead of CoinJoin heuristic
// flags.
package auditstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool holding verification outcomes.
type Store struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	log.Println("successfully connected to PostgreSQL for the audit store")
	return &Store{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql.
func (s *Store) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/auditstore/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	_, err = s.pool.Exec(context.Background(), string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}

	log.Println("audit store schema initialized")
	return nil
}

// Outcome is one recorded verification result.
type Outcome struct {
	TxID         string
	Accepted     bool
	RejectedKind string
	CheckedAt    time.Time
}

// SaveOutcome upserts a transaction's verification outcome.
func (s *Store) SaveOutcome(ctx context.Context, o Outcome) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var rejectedKind any
	if o.RejectedKind != "" {
		rejectedKind = o.RejectedKind
	}

	insertSQL := `
		INSERT INTO verification_outcomes (txid, accepted, rejected_kind, checked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (txid) DO UPDATE
		SET accepted = EXCLUDED.accepted, rejected_kind = EXCLUDED.rejected_kind, checked_at = EXCLUDED.checked_at;
	`
	if _, err := tx.Exec(ctx, insertSQL, o.TxID, o.Accepted, rejectedKind, o.CheckedAt); err != nil {
		return fmt.Errorf("failed to insert verification_outcomes: %w", err)
	}

	return tx.Commit(ctx)
}

// RecentRejections lists the most recently checked-and-rejected transactions.
func (s *Store) RecentRejections(ctx context.Context, limit int) ([]Outcome, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT txid, accepted, rejected_kind, checked_at
		FROM verification_outcomes
		WHERE accepted = FALSE
		ORDER BY checked_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var rejectedKind *string
		if err := rows.Scan(&o.TxID, &o.Accepted, &rejectedKind, &o.CheckedAt); err != nil {
			return nil, err
		}
		if rejectedKind != nil {
			o.RejectedKind = *rejectedKind
		}
		out = append(out, o)
	}
	if out == nil {
		out = []Outcome{}
	}
	return out, nil
}

// GetPool exposes the connection pool for callers that need direct access.
func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}
