package session

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/farhanmaulana/cetakin-backend/pkg/redis"
)

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (string, error) {
	if val, ok := m.values[key]; ok {
		return val, nil
	}
	return "", redisclient.Nil
}

func (m *memStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type staticKeyer struct{}

func (staticKeyer) AccessSessionKey(accessID string) string { return "test:session:" + accessID }

func newTestManager() (*Manager, *memStore) {
	store := newMemStore()
	return &Manager{store: store, keyer: staticKeyer{}, ttl: time.Minute}, store
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	ctx := context.Background()

	if err := mgr.Start(ctx, "jti-1", "user-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ok, err := mgr.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if !ok {
		t.Fatal("session should be live after Start")
	}

	if err := mgr.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	ok, err = mgr.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("HasSession after revoke: %v", err)
	}
	if ok {
		t.Fatal("session should be gone after Revoke")
	}
}

func TestSessionValidation(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	ctx := context.Background()

	if err := mgr.Start(ctx, "", "user-1"); err == nil {
		t.Fatal("expected error for empty access id")
	}
	if err := mgr.Start(ctx, "jti", "  "); err == nil {
		t.Fatal("expected error for empty user id")
	}

	ok, err := mgr.HasSession(ctx, "")
	if err != nil || ok {
		t.Fatalf("blank access id should be (false, nil), got (%v, %v)", ok, err)
	}
}
