package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/veridoc-labs/veridoc-core/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func testSession(userID string) *domain.Session {
	return &domain.Session{
		ID:           "session-123",
		UserID:       userID,
		Token:        "token-abc",
		RefreshToken: "refresh-xyz",
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		CreatedAt:    time.Now(),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("user-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "user-1" || got.RefreshToken != "refresh-xyz" {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestSessionStore_Save_ExpiredSession(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("user-1")
	session.ExpiresAt = time.Now().Add(-time.Hour)

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)

	if _, err := store.Get(context.Background(), "missing"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_GetByRefreshToken(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("user-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByRefreshToken(ctx, "refresh-xyz")
	if err != nil {
		t.Fatalf("GetByRefreshToken: %v", err)
	}
	if got.ID != session.ID {
		t.Errorf("got session %s, want %s", got.ID, session.ID)
	}

	if _, err := store.GetByRefreshToken(ctx, "unknown"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("user-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Refresh token index must go with it
	if _, err := store.GetByRefreshToken(ctx, session.RefreshToken); err != domain.ErrNotFound {
		t.Errorf("expected refresh index removed, got %v", err)
	}
}

func TestSessionStore_Delete_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)

	if err := store.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("deleting a missing session should be a no-op, got %v", err)
	}
}

func TestSessionStore_DeleteByUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		session := testSession("user-1")
		session.ID = id
		session.RefreshToken = "refresh-" + id
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	other := testSession("user-2")
	other.ID = "other"
	other.RefreshToken = "refresh-other"
	if err := store.Save(ctx, other); err != nil {
		t.Fatalf("Save other: %v", err)
	}

	if err := store.DeleteByUser(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}

	for _, id := range []string{"s1", "s2", "s3"} {
		if _, err := store.Get(ctx, id); err != domain.ErrNotFound {
			t.Errorf("session %s should be gone, got %v", id, err)
		}
	}

	if _, err := store.Get(ctx, "other"); err != nil {
		t.Errorf("other user's session should survive, got %v", err)
	}
}

func TestSessionStore_TTLExpiration(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session := testSession("user-1")
	session.ExpiresAt = time.Now().Add(time.Minute)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, session.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound after TTL, got %v", err)
	}
}
