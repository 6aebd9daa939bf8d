package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// =========================================================================
// Public Methods (satisfy the revocation.Storage interface)
// =========================================================================

// SaveRevokedToken appends a token id to the revocation ledger.
// Duplicate appends are a no-op.
func (s *Storage) SaveRevokedToken(jti string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveRevokedToken(tx, jti)
	})
}

// RecentlyRevokedTokens fetches token ids revoked after the specified
// time, newest first. Used by the in-memory ledger refresh.
func (s *Storage) RecentlyRevokedTokens(since time.Time) ([]string, error) {
	return s.recentlyRevokedTokens(s.db, since)
}

// DeleteRevokedTokensBefore prunes ledger rows older than cutoff and
// returns how many were removed.
func (s *Storage) DeleteRevokedTokensBefore(cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var deleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		deleted, err = s.deleteRevokedTokensBefore(tx, cutoff)
		return err
	})
	return deleted, err
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveRevokedToken(q Querier, jti string) error {
	_, err := q.Exec(`
        INSERT INTO revoked_tokens (jti, revoked_at)
        VALUES ($1, NOW() AT TIME ZONE 'utc')
        ON CONFLICT (jti) DO NOTHING`,
		jti)
	if err != nil {
		return fmt.Errorf("failed to insert revoked token: %w", err)
	}
	return nil
}

func (s *Storage) recentlyRevokedTokens(q Querier, since time.Time) ([]string, error) {
	rows, err := q.Query(`
        SELECT jti
        FROM revoked_tokens
        WHERE revoked_at >= $1
        ORDER BY revoked_at DESC`,
		since)
	if err != nil {
		return nil, fmt.Errorf("failed to query revoked tokens: %w", err)
	}
	defer rows.Close()

	var jtis []string
	for rows.Next() {
		var jti string
		if err := rows.Scan(&jti); err != nil {
			return nil, fmt.Errorf("failed to scan revoked token id: %w", err)
		}
		jtis = append(jtis, jti)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revoked tokens: %w", err)
	}

	return jtis, nil
}

func (s *Storage) deleteRevokedTokensBefore(q Querier, cutoff time.Time) (int64, error) {
	result, err := q.Exec("DELETE FROM revoked_tokens WHERE revoked_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune revoked tokens: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows for prune: %w", err)
	}
	return deleted, nil
}
