// README: Per-user generation guard: one in-flight generation and a monthly quota, kept in Redis.
package usage

import (
	"errors"
	"time"
)

var (
	// ErrInFlight is returned when the user already has a generation running.
	ErrInFlight = errors.New("generation already in progress")
	// ErrQuotaExceeded is returned when the monthly generation quota is used up.
	ErrQuotaExceeded = errors.New("monthly generation quota exceeded")
)

// DefaultMonthlyQuota is the number of generations a user gets per calendar month.
const DefaultMonthlyQuota = 100

// DefaultInFlightTTL bounds how long a crashed request can hold the in-flight slot.
const DefaultInFlightTTL = 3 * time.Minute

// quotaKeyTTL outlives the month so a counter is never dropped mid-month.
const quotaKeyTTL = 35 * 24 * time.Hour

func inFlightKey(uid string) string {
	return "usage:inflight:" + uid
}

func quotaKey(uid string, at time.Time) string {
	return "usage:quota:" + uid + ":" + monthOf(at)
}

func monthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
