package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/stackover-dev/stackover/internal/logger"
)

// Storage defines the database operations the ledger needs. Revoked
// token ids are append-only rows; rows past the token TTL are garbage
// since an expired token already fails decode on its own.
type Storage interface {
	SaveRevokedToken(jti string) error
	RecentlyRevokedTokens(since time.Time) ([]string, error)
	DeleteRevokedTokensBefore(cutoff time.Time) (int64, error)
}

// Ledger answers "has this token id been revoked" for the auth
// middleware. Writes go to the database first and are then reflected in
// the local set, so a logout is visible to the very next request. The
// background refresh picks up revocations made by other instances.
type Ledger struct {
	storage        Storage
	revoked        map[string]bool
	localRecords   map[string]time.Time // jtis recorded by this instance, by record time
	mu             sync.RWMutex
	jwtTTL         time.Duration
	lastUpdateTime time.Time
}

func New(storage Storage, jwtTTL time.Duration) *Ledger {
	return &Ledger{
		storage:      storage,
		revoked:      make(map[string]bool),
		localRecords: make(map[string]time.Time),
		jwtTTL:       jwtTTL,
	}
}

// Record appends a token id to the ledger. Recording the same id twice
// is a no-op, not an error. The record time is kept so a Refresh whose
// DB snapshot predates this write cannot drop the jti from the set.
func (l *Ledger) Record(jti string) error {
	if err := l.storage.SaveRevokedToken(jti); err != nil {
		return err
	}

	l.mu.Lock()
	l.revoked[jti] = true
	l.localRecords[jti] = time.Now()
	l.mu.Unlock()
	return nil
}

func (l *Ledger) IsRevoked(jti string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revoked[jti]
}

// Refresh rebuilds the in-memory set from ids revoked within
// (JWT TTL + 10% buffer) to handle clock skew. Older entries are
// irrelevant: those tokens are already past their own expiry.
// Jtis recorded locally are merged back in under the same lock, so a
// Record that landed after the DB snapshot was read is never dropped.
func (l *Ledger) Refresh() error {
	bufferMultiplier := 1.1
	since := time.Now().Add(-time.Duration(float64(l.jwtTTL) * bufferMultiplier))

	jtis, err := l.storage.RecentlyRevokedTokens(since)
	if err != nil {
		return err
	}

	newSet := make(map[string]bool, len(jtis))
	for _, jti := range jtis {
		newSet[jti] = true
	}

	l.mu.Lock()
	for jti, recordedAt := range l.localRecords {
		if recordedAt.After(since) {
			newSet[jti] = true
		} else {
			// Token is past its own expiry, overlay entry is done
			delete(l.localRecords, jti)
		}
	}
	l.revoked = newSet
	l.lastUpdateTime = time.Now()
	l.mu.Unlock()

	logger.Log.Info("revocation ledger refreshed",
		"component", "revocation_ledger",
		"entries", len(newSet),
		"since", since.Format(time.RFC3339))
	return nil
}

// Prune deletes ledger rows whose token has been expired for longer
// than the skew buffer. Observable behavior is unchanged: decode
// rejects those tokens before the ledger is ever consulted.
func (l *Ledger) Prune() error {
	bufferMultiplier := 1.1
	cutoff := time.Now().Add(-time.Duration(float64(l.jwtTTL) * bufferMultiplier))

	deleted, err := l.storage.DeleteRevokedTokensBefore(cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logger.Log.Info("pruned revocation ledger",
			"component", "revocation_ledger",
			"deleted", deleted)
	}
	return nil
}

// StartBackgroundUpdate runs one synchronous Refresh so revocations
// made before a restart are visible immediately, then starts a
// goroutine that periodically refreshes the in-memory set and prunes
// expired rows until ctx is cancelled.
func (l *Ledger) StartBackgroundUpdate(ctx context.Context, interval time.Duration) {
	if err := l.Refresh(); err != nil {
		logger.Log.Error("initial revocation ledger refresh failed",
			"component", "revocation_ledger",
			"error", err)
	}

	ticker := time.NewTicker(interval)
	logger.Log.Info("started revocation ledger background updates",
		"component", "revocation_ledger",
		"interval", interval,
		"jwt_ttl", l.jwtTTL)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := l.Refresh(); err != nil {
					logger.Log.Error("revocation ledger refresh failed",
						"component", "revocation_ledger",
						"error", err)
				}
				if err := l.Prune(); err != nil {
					logger.Log.Error("revocation ledger prune failed",
						"component", "revocation_ledger",
						"error", err)
				}
			case <-ctx.Done():
				logger.Log.Info("revocation ledger shutting down gracefully",
					"component", "revocation_ledger")
				return
			}
		}
	}()
}
