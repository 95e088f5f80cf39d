package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateRepoStartsWindowOnFirstIncrement(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewRateRepo(client)
	ctx := context.Background()

	count, ttl, err := repo.IncrementWindow(ctx, "rate:test", 10*time.Second)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if count != 1 || ttl != 10*time.Second {
		t.Fatalf("unexpected first window state: count=%d ttl=%s", count, ttl)
	}

	mr.FastForward(4 * time.Second)
	count, ttl, err = repo.IncrementWindow(ctx, "rate:test", 10*time.Second)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if count != 2 || ttl != 6*time.Second {
		t.Fatalf("unexpected second window state: count=%d ttl=%s", count, ttl)
	}
}

func TestRateRepoRepairsMissingExpiry(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	if err := mr.Set("rate:stuck", "5"); err != nil {
		t.Fatalf("seed key: %v", err)
	}

	count, ttl, err := NewRateRepo(client).IncrementWindow(context.Background(), "rate:stuck", time.Minute)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if count != 6 || ttl != time.Minute {
		t.Fatalf("unexpected state: count=%d ttl=%s", count, ttl)
	}
	if got := mr.TTL("rate:stuck"); got != time.Minute {
		t.Fatalf("expected repaired ttl, got %s", got)
	}
}

func TestRateRepoValidatesInput(t *testing.T) {
	if _, _, err := NewRateRepo(nil).IncrementWindow(context.Background(), "k", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()
	if _, _, err := NewRateRepo(client).IncrementWindow(context.Background(), "", time.Second); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
