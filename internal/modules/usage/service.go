package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// releaseTimeout bounds the slot release, which runs after the request context may be gone.
const releaseTimeout = 2 * time.Second

// Guard enforces one in-flight generation per user and a monthly quota.
type Guard struct {
	store       *Store
	quota       int
	inFlightTTL time.Duration
	now         func() time.Time
}

// NewGuard creates a Guard. A quota of zero or less disables the quota check.
func NewGuard(store *Store, quota int, inFlightTTL time.Duration) *Guard {
	if inFlightTTL <= 0 {
		inFlightTTL = DefaultInFlightTTL
	}
	return &Guard{store: store, quota: quota, inFlightTTL: inFlightTTL, now: time.Now}
}

// Acquire takes the user's in-flight slot. The returned release func must be
// called when the generation finishes; it is safe to call more than once.
func (g *Guard) Acquire(ctx context.Context, uid string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.store.AcquireSlot(ctx, uid, token, g.inFlightTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire in-flight slot: %w", err)
	}
	if !ok {
		return nil, ErrInFlight
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_ = g.store.ReleaseSlot(rctx, uid, token)
	}, nil
}

// Consume spends one unit of the monthly quota and returns the time it was
// charged at. It returns ErrQuotaExceeded, leaving the counter unchanged, when
// the quota is already used up.
func (g *Guard) Consume(ctx context.Context, uid string) (time.Time, error) {
	now := g.now()
	if g.quota <= 0 {
		return now, nil
	}
	n, err := g.store.Incr(ctx, uid, now)
	if err != nil {
		return now, fmt.Errorf("consume quota: %w", err)
	}
	if n > int64(g.quota) {
		if err := g.store.Decr(ctx, uid, now); err != nil {
			return now, fmt.Errorf("roll back quota: %w", err)
		}
		return now, ErrQuotaExceeded
	}
	return now, nil
}

// Refund gives back the unit charged at chargedAt, used when a generation
// fails after Consume. The unit returns to the month it was taken from.
func (g *Guard) Refund(ctx context.Context, uid string, chargedAt time.Time) error {
	if g.quota <= 0 {
		return nil
	}
	return g.store.Decr(ctx, uid, chargedAt)
}

// Remaining returns the units left this month, or -1 when the quota is disabled.
func (g *Guard) Remaining(ctx context.Context, uid string) (int, error) {
	if g.quota <= 0 {
		return -1, nil
	}
	n, err := g.store.Count(ctx, uid, g.now())
	if err != nil {
		return 0, err
	}
	left := g.quota - int(n)
	if left < 0 {
		left = 0
	}
	return left, nil
}
