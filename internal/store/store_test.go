package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/router-for-me/MailRelayGateway/internal/db"
	"github.com/router-for-me/MailRelayGateway/internal/models"
)

func seedUsers() models.Collection {
	return models.Collection{
		{Username: "alice", Password: "pw", Role: models.RoleAdmin, DailyResetDate: models.DailyResetSentinel},
		{Username: "bob", Password: "pw", Role: models.RoleUser, DailyResetDate: models.DailyResetSentinel},
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s, errNew := NewMemoryStore(seedUsers())
	if errNew != nil {
		t.Fatalf("new memory store: %v", errNew)
	}

	users, version, errLoad := s.Load(context.Background())
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if len(users) != 2 || version == "" {
		t.Fatalf("expected 2 users and a version, got %d %q", len(users), version)
	}

	users[0].UsedToday = 5
	if errSave := s.Save(context.Background(), users, version, "update usage for alice"); errSave != nil {
		t.Fatalf("save: %v", errSave)
	}

	reloaded, next, errReload := s.Load(context.Background())
	if errReload != nil {
		t.Fatalf("reload: %v", errReload)
	}
	if reloaded[0].UsedToday != 5 {
		t.Fatalf("expected usedToday=5, got %d", reloaded[0].UsedToday)
	}
	if next == version {
		t.Fatalf("expected version to advance")
	}
	if len(s.Messages) != 1 || s.Messages[0] != "update usage for alice" {
		t.Fatalf("expected change description recorded, got %v", s.Messages)
	}
}

func TestMemoryStore_Conflict(t *testing.T) {
	s, _ := NewMemoryStore(seedUsers())

	users, version, _ := s.Load(context.Background())
	if errSave := s.Save(context.Background(), users, version, "first"); errSave != nil {
		t.Fatalf("first save: %v", errSave)
	}

	// The second writer still holds the old version marker.
	errStale := s.Save(context.Background(), users, version, "second")
	if !errors.Is(errStale, ErrConflict) {
		t.Fatalf("expected conflict, got %v", errStale)
	}
}

func TestMemoryStore_Empty(t *testing.T) {
	s, _ := NewMemoryStore(nil)

	users, version, errLoad := s.Load(context.Background())
	if errLoad != nil || len(users) != 0 || version != "" {
		t.Fatalf("expected empty collection, got %v %q %v", users, version, errLoad)
	}
	if errSave := s.Save(context.Background(), seedUsers(), version, "add user alice"); errSave != nil {
		t.Fatalf("first save: %v", errSave)
	}
}

func openGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "gateway-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewGormStore(conn, "users")
}

func TestGormStore_RoundTrip(t *testing.T) {
	s := openGormStore(t)
	ctx := context.Background()

	users, version, errLoad := s.Load(ctx)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if len(users) != 0 || version != "" {
		t.Fatalf("expected empty document, got %d users version %q", len(users), version)
	}

	if errSave := s.Save(ctx, seedUsers(), version, "add user alice"); errSave != nil {
		t.Fatalf("first save: %v", errSave)
	}

	users, version, errLoad = s.Load(ctx)
	if errLoad != nil {
		t.Fatalf("reload: %v", errLoad)
	}
	if len(users) != 2 || version == "" {
		t.Fatalf("expected 2 users and a version, got %d %q", len(users), version)
	}

	users[1].UsedToday = 3
	if errSave := s.Save(ctx, users, version, "update usage for bob"); errSave != nil {
		t.Fatalf("second save: %v", errSave)
	}

	reloaded, _, _ := s.Load(ctx)
	if reloaded[1].UsedToday != 3 {
		t.Fatalf("expected usedToday=3, got %d", reloaded[1].UsedToday)
	}
}

func TestGormStore_Conflict(t *testing.T) {
	s := openGormStore(t)
	ctx := context.Background()

	if errSave := s.Save(ctx, seedUsers(), "", "add user alice"); errSave != nil {
		t.Fatalf("seed save: %v", errSave)
	}
	users, version, _ := s.Load(ctx)

	if errSave := s.Save(ctx, users, version, "first"); errSave != nil {
		t.Fatalf("first save: %v", errSave)
	}
	errStale := s.Save(ctx, users, version, "second")
	if !errors.Is(errStale, ErrConflict) {
		t.Fatalf("expected conflict, got %v", errStale)
	}
}

func TestGormStore_FirstWriterWins(t *testing.T) {
	s := openGormStore(t)
	ctx := context.Background()

	if errSave := s.Save(ctx, seedUsers(), "", "first"); errSave != nil {
		t.Fatalf("first save: %v", errSave)
	}
	// A second writer that loaded before the document existed.
	errStale := s.Save(ctx, seedUsers(), "", "second")
	if !errors.Is(errStale, ErrConflict) {
		t.Fatalf("expected conflict for concurrent create, got %v", errStale)
	}
}
