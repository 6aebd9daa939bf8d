package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	saved   []string
	recent  []string
	deleted int64

	SaveRevokedTokenFunc          func(jti string) error
	RecentlyRevokedTokensFunc     func(since time.Time) ([]string, error)
	DeleteRevokedTokensBeforeFunc func(cutoff time.Time) (int64, error)
}

func (m *mockStorage) SaveRevokedToken(jti string) error {
	if m.SaveRevokedTokenFunc != nil {
		return m.SaveRevokedTokenFunc(jti)
	}
	m.saved = append(m.saved, jti)
	return nil
}

func (m *mockStorage) RecentlyRevokedTokens(since time.Time) ([]string, error) {
	if m.RecentlyRevokedTokensFunc != nil {
		return m.RecentlyRevokedTokensFunc(since)
	}
	return m.recent, nil
}

func (m *mockStorage) DeleteRevokedTokensBefore(cutoff time.Time) (int64, error) {
	if m.DeleteRevokedTokensBeforeFunc != nil {
		return m.DeleteRevokedTokensBeforeFunc(cutoff)
	}
	return m.deleted, nil
}

func TestRecord_VisibleImmediately(t *testing.T) {
	storage := &mockStorage{}
	ledger := New(storage, time.Hour)

	assert.False(t, ledger.IsRevoked("jti-1"))

	require.NoError(t, ledger.Record("jti-1"))

	assert.True(t, ledger.IsRevoked("jti-1"))
	assert.Equal(t, []string{"jti-1"}, storage.saved)
}

func TestRecord_Idempotent(t *testing.T) {
	storage := &mockStorage{}
	ledger := New(storage, time.Hour)

	require.NoError(t, ledger.Record("jti-1"))
	require.NoError(t, ledger.Record("jti-1"))

	assert.True(t, ledger.IsRevoked("jti-1"))
}

func TestRecord_StorageErrorNotMarkedLocally(t *testing.T) {
	storage := &mockStorage{
		SaveRevokedTokenFunc: func(jti string) error { return assert.AnError },
	}
	ledger := New(storage, time.Hour)

	err := ledger.Record("jti-1")

	require.Error(t, err)
	// the database is the source of truth; a failed append must not
	// leave the token locally revoked
	assert.False(t, ledger.IsRevoked("jti-1"))
}

func TestRefresh_ReplacesSet(t *testing.T) {
	storage := &mockStorage{recent: []string{"jti-a", "jti-b"}}
	ledger := New(storage, time.Hour)

	require.NoError(t, ledger.Refresh())

	assert.True(t, ledger.IsRevoked("jti-a"))
	assert.True(t, ledger.IsRevoked("jti-b"))
	assert.False(t, ledger.IsRevoked("jti-c"))
}

func TestRefresh_WindowCoversTTLWithBuffer(t *testing.T) {
	var gotSince time.Time
	storage := &mockStorage{
		RecentlyRevokedTokensFunc: func(since time.Time) ([]string, error) {
			gotSince = since
			return nil, nil
		},
	}
	ledger := New(storage, time.Hour)

	require.NoError(t, ledger.Refresh())

	// 1h TTL + 10% buffer
	expected := time.Now().Add(-66 * time.Minute)
	assert.WithinDuration(t, expected, gotSince, 5*time.Second)
}

// A Record landing while a Refresh is between its DB read and the map
// swap must survive the swap: once recorded, IsRevoked stays true.
func TestRefresh_KeepsRecordMadeDuringSnapshot(t *testing.T) {
	snapshotRead := make(chan struct{})
	releaseRefresh := make(chan struct{})
	storage := &mockStorage{
		RecentlyRevokedTokensFunc: func(since time.Time) ([]string, error) {
			close(snapshotRead)
			<-releaseRefresh
			// snapshot taken before jti-x was recorded
			return []string{"jti-old"}, nil
		},
	}
	ledger := New(storage, time.Hour)

	refreshDone := make(chan error)
	go func() {
		refreshDone <- ledger.Refresh()
	}()

	<-snapshotRead
	require.NoError(t, ledger.Record("jti-x"))
	require.True(t, ledger.IsRevoked("jti-x"))

	close(releaseRefresh)
	require.NoError(t, <-refreshDone)

	assert.True(t, ledger.IsRevoked("jti-x"), "recorded jti must survive a concurrent refresh")
	assert.True(t, ledger.IsRevoked("jti-old"))
}

func TestRefresh_DropsLocalRecordsPastWindow(t *testing.T) {
	storage := &mockStorage{}
	ledger := New(storage, time.Hour)

	require.NoError(t, ledger.Record("jti-stale"))
	// backdate the local record past the TTL + buffer window
	ledger.mu.Lock()
	ledger.localRecords["jti-stale"] = time.Now().Add(-2 * time.Hour)
	ledger.mu.Unlock()

	require.NoError(t, ledger.Refresh())

	assert.False(t, ledger.IsRevoked("jti-stale"))
	ledger.mu.RLock()
	_, kept := ledger.localRecords["jti-stale"]
	ledger.mu.RUnlock()
	assert.False(t, kept)
}

func TestStartBackgroundUpdate_RefreshesBeforeFirstTick(t *testing.T) {
	storage := &mockStorage{recent: []string{"jti-prior"}}
	ledger := New(storage, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// interval far beyond the test lifetime: only the synchronous
	// initial refresh can have populated the set
	ledger.StartBackgroundUpdate(ctx, time.Hour)

	assert.True(t, ledger.IsRevoked("jti-prior"))
}

func TestPrune_PropagatesError(t *testing.T) {
	storage := &mockStorage{
		DeleteRevokedTokensBeforeFunc: func(cutoff time.Time) (int64, error) {
			return 0, assert.AnError
		},
	}
	ledger := New(storage, time.Hour)

	assert.Error(t, ledger.Prune())
}
