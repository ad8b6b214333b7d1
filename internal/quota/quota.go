// Package quota holds the pure send-policy decision logic: the daily
// counter window, the default limit, and the inter-send cooldown. It never
// touches storage; callers load a record, check, perform the side effect,
// commit, and persist.
package quota

import (
	"fmt"
	"time"

	"github.com/router-for-me/MailRelayGateway/internal/models"
)

const (
	// DefaultDailyLimit applies when a record carries no limit override.
	DefaultDailyLimit = 25
	// Cooldown is the minimum spacing between two successful sends.
	Cooldown = 5 * time.Minute
)

// Result describes the outcome of a quota check.
type Result struct {
	Allowed     bool
	Message     string // human-readable rejection reason
	Limit       int    // effective daily limit, set on limit rejections
	WaitSeconds int    // remaining cooldown, set on cooldown rejections
}

// DateOf returns the UTC calendar date of t in the stored format.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Check evaluates the policy for one send attempt. The daily window is
// rolled over in place first, so a usedToday counted against a previous
// date never counts against today.
func Check(rec *models.UserRecord, now time.Time) Result {
	today := DateOf(now)
	if rec.DailyResetDate != today {
		rec.DailyResetDate = today
		rec.UsedToday = 0
	}

	limit := rec.Limit
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if rec.UsedToday >= limit {
		return Result{
			Message: fmt.Sprintf("daily limit reached (%d), try again tomorrow", limit),
			Limit:   limit,
		}
	}

	if rec.LastSend != 0 {
		elapsed := now.UnixMilli() - rec.LastSend
		if cooldownMs := Cooldown.Milliseconds(); elapsed < cooldownMs {
			wait := (cooldownMs - elapsed + 999) / 1000
			return Result{
				Message:     fmt.Sprintf("cooldown active, wait %d seconds", wait),
				WaitSeconds: int(wait),
			}
		}
	}

	return Result{Allowed: true, Limit: limit}
}

// Commit advances the usage counters after the side effect succeeded. The
// caller persists the record afterwards.
func Commit(rec *models.UserRecord, now time.Time) {
	rec.LastSend = now.UnixMilli()
	rec.UsedToday++
}

// RecomputePremium forces premium off when the premium period has elapsed.
// It reports whether the record changed.
func RecomputePremium(rec *models.UserRecord, now time.Time) bool {
	if rec.Premium && rec.PremiumUntil != 0 && now.UnixMilli() > rec.PremiumUntil {
		rec.Premium = false
		return true
	}
	return false
}
