// README: Usage guard tests (in-flight slot and monthly quota boundaries).
package usage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKeys(t *testing.T) {
	at := time.Date(2026, 3, 31, 23, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	if got := quotaKey("u1", at); got != "usage:quota:u1:2026-03" {
		t.Fatalf("unexpected quota key %q", got)
	}
	if got := inFlightKey("u1"); got != "usage:inflight:u1" {
		t.Fatalf("unexpected in-flight key %q", got)
	}
}

// TestAcquireIsExclusive verifies a second generation is refused until the first releases.
func TestAcquireIsExclusive(t *testing.T) {
	guard, _ := setupTestGuard(t, 5)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "user_a")
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if _, err := guard.Acquire(ctx, "user_a"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	other, err := guard.Acquire(ctx, "user_b")
	if err != nil {
		t.Fatalf("other user should not be blocked: %v", err)
	}
	other()

	release()
	release()
	again, err := guard.Acquire(ctx, "user_a")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again()
}

// TestConsumeStopsAtQuota verifies the counter never passes the quota.
func TestConsumeStopsAtQuota(t *testing.T) {
	guard, rdb := setupTestGuard(t, 2)
	ctx := context.Background()

	var chargedAt time.Time
	for i := 0; i < 2; i++ {
		var err error
		if chargedAt, err = guard.Consume(ctx, "user_q"); err != nil {
			t.Fatalf("Consume %d: %v", i, err)
		}
	}
	if _, err := guard.Consume(ctx, "user_q"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	n, err := rdb.Get(ctx, quotaKey("user_q", guard.now())).Int()
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected counter to stay at 2, got %d", n)
	}

	left, err := guard.Remaining(ctx, "user_q")
	if err != nil || left != 0 {
		t.Fatalf("expected 0 remaining, got %d (%v)", left, err)
	}
	if err := guard.Refund(ctx, "user_q", chargedAt); err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if left, _ := guard.Remaining(ctx, "user_q"); left != 1 {
		t.Fatalf("expected 1 remaining after refund, got %d", left)
	}
}

// TestRefundAcrossMonthBoundary verifies a refund lands on the month that was charged.
func TestRefundAcrossMonthBoundary(t *testing.T) {
	guard, rdb := setupTestGuard(t, 3)
	ctx := context.Background()

	endOfMonth := time.Date(2026, 10, 31, 23, 59, 59, 0, time.UTC)
	guard.now = func() time.Time { return endOfMonth }
	chargedAt, err := guard.Consume(ctx, "user_m")
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	nextMonth := endOfMonth.Add(2 * time.Second)
	guard.now = func() time.Time { return nextMonth }
	if err := guard.Refund(ctx, "user_m", chargedAt); err != nil {
		t.Fatalf("Refund: %v", err)
	}

	if n, err := rdb.Get(ctx, quotaKey("user_m", endOfMonth)).Int(); err != nil || n != 0 {
		t.Fatalf("expected charged month back at 0, got %d (%v)", n, err)
	}
	if err := rdb.Get(ctx, quotaKey("user_m", nextMonth)).Err(); !errors.Is(err, redis.Nil) {
		t.Fatalf("new month counter should be untouched, got %v", err)
	}
	if left, _ := guard.Remaining(ctx, "user_m"); left != 3 {
		t.Fatalf("expected full quota in the new month, got %d", left)
	}
}

func TestDecrStopsAtZero(t *testing.T) {
	guard, rdb := setupTestGuard(t, 3)
	ctx := context.Background()
	at := guard.now()

	if err := guard.store.Decr(ctx, "user_z", at); err != nil {
		t.Fatalf("Decr: %v", err)
	}
	if n, err := guard.store.Count(ctx, "user_z", at); err != nil || n != 0 {
		t.Fatalf("expected 0, got %d (%v)", n, err)
	}
	if exists, _ := rdb.Exists(ctx, quotaKey("user_z", at)).Result(); exists != 0 {
		t.Fatal("decrementing a missing counter should not create it")
	}
}

func TestQuotaDisabled(t *testing.T) {
	guard := NewGuard(nil, 0, 0)
	if _, err := guard.Consume(context.Background(), "u"); err != nil {
		t.Fatalf("Consume with quota disabled: %v", err)
	}
	if left, err := guard.Remaining(context.Background(), "u"); err != nil || left != -1 {
		t.Fatalf("expected -1 remaining, got %d (%v)", left, err)
	}
	if guard.inFlightTTL != DefaultInFlightTTL {
		t.Fatalf("expected default in-flight ttl, got %s", guard.inFlightTTL)
	}
}

// setupTestGuard returns a Redis-backed Guard with a fixed clock and skips
// when MOODTRIP_TEST_REDIS is not set.
func setupTestGuard(t *testing.T, quota int) (*Guard, *redis.Client) {
	t.Helper()

	addr := os.Getenv("MOODTRIP_TEST_REDIS")
	if addr == "" {
		t.Skip("MOODTRIP_TEST_REDIS not set; skipping Redis-backed tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	keys, err := rdb.Keys(ctx, "usage:*").Result()
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) > 0 {
		if err := rdb.Del(ctx, keys...).Err(); err != nil {
			t.Fatalf("clear keys: %v", err)
		}
	}

	guard := NewGuard(NewStore(rdb), quota, time.Minute)
	fixed := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return fixed }
	return guard, rdb
}
