package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/attachment-router/internal/core"
	"go.uber.org/zap"
)

func TestPutAndFetch(t *testing.T) {
	store := NewStore(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	obj := &core.StorageObject{Bucket: "outbound", Key: "archive/2024-03-15/flood_zones.csv", Data: []byte("a,b\n1,2\n")}
	if err := store.Put(ctx, obj); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	data, err := store.Fetch(ctx, core.Location{Bucket: "outbound", Key: "archive/2024-03-15/flood_zones.csv"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Errorf("Fetch() = %q", data)
	}

	// Overwrite keeps the latest content
	obj.Data = []byte("a,b\n3,4\n")
	if err := store.Put(ctx, obj); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data, _ = store.Fetch(ctx, core.Location{Bucket: "outbound", Key: "archive/2024-03-15/flood_zones.csv"})
	if string(data) != "a,b\n3,4\n" {
		t.Errorf("Fetch() after overwrite = %q", data)
	}
}

func TestFetchMissing(t *testing.T) {
	store := NewStore(t.TempDir(), zap.NewNop())

	_, err := store.Fetch(context.Background(), core.Location{Bucket: "inbound", Key: "nope"})
	var retrievalErr *core.RetrievalError
	if !errors.As(err, &retrievalErr) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
}

func TestPutRejectsEscapingKey(t *testing.T) {
	store := NewStore(t.TempDir(), zap.NewNop())

	err := store.Put(context.Background(), &core.StorageObject{Bucket: "outbound", Key: "../../etc/passwd"})
	var writeErr *core.StorageWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}
}

func TestLatest(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, zap.NewNop())
	dir := filepath.Join(root, "inbound", "emails-received")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "newest", "middle"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		if err := os.Chtimes(p, base, base.Add(offsets[i])); err != nil {
			t.Fatal(err)
		}
	}

	loc, err := store.Latest(context.Background(), "inbound", "emails-received/")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if loc.Key != "emails-received/newest" {
		t.Errorf("Latest() = %q, want emails-received/newest", loc.Key)
	}

	_, err = store.Latest(context.Background(), "inbound", "other/")
	if !errors.Is(err, core.ErrNoObjects) {
		t.Errorf("expected ErrNoObjects, got %v", err)
	}
}

func TestExists(t *testing.T) {
	store := NewStore(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	loc := core.Location{Bucket: "ledger", Key: "processed/abc"}
	if ok, err := store.Exists(ctx, loc); err != nil || ok {
		t.Fatalf("Exists() before write = %v, %v", ok, err)
	}
	if err := store.Put(ctx, &core.StorageObject{Bucket: loc.Bucket, Key: loc.Key}); err != nil {
		t.Fatal(err)
	}
	if ok, err := store.Exists(ctx, loc); err != nil || !ok {
		t.Fatalf("Exists() after write = %v, %v", ok, err)
	}
}
