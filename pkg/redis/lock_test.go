package redis

import (
	"context"
	"testing"
	"time"
)

func TestRedisLockExclusive(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient()

	first, err := client.NewSyncLock("product-1", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, err := client.NewSyncLock("product-1", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first acquire, ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("expected second acquire to be refused, ok=%v err=%v", ok, err)
	}

	// releasing a lock that was never owned leaves the holder intact
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, _ = second.Acquire(ctx)
	if ok {
		t.Fatal("lock must still be held by first owner")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected acquire after release, ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseIgnoresForeignOwner(t *testing.T) {
	ctx := context.Background()
	client, fake := newTestClient()

	lock, err := NewLock(client, "gogo-admin:lock:cron:job", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	if ok, err := lock.Acquire(ctx); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	fake.data["gogo-admin:lock:cron:job"] = "someone-else"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if fake.data["gogo-admin:lock:cron:job"] != "someone-else" {
		t.Fatal("foreign owner key must not be deleted")
	}
}

func TestNewLockValidation(t *testing.T) {
	if _, err := NewLock(nil, "k", time.Second); err == nil {
		t.Fatal("expected error for nil store")
	}
	client, _ := newTestClient()
	if _, err := NewLock(client, "", time.Second); err == nil {
		t.Fatal("expected error for empty key")
	}
	lock, err := NewLock(client, "k", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lock.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %v", lock.ttl)
	}
}
