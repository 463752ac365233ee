package services

import "time"

// DefaultValidityDays is how long a quote stays current after creation.
const DefaultValidityDays = 30

func validityWindow(validityDays int) time.Duration {
	if validityDays < 0 {
		validityDays = 0
	}
	return time.Duration(validityDays) * 24 * time.Hour
}

// ValidUntil returns the last instant at which a quote is still current.
// A window of zero or fewer days ends at createdAt.
func ValidUntil(createdAt time.Time, validityDays int) time.Time {
	return createdAt.Add(validityWindow(validityDays))
}

// IsExpired reports whether more than validityDays have passed since
// createdAt. A quote exactly validityDays old is still valid. A window
// of zero or fewer days expires the quote as soon as any time has passed.
func IsExpired(createdAt, now time.Time, validityDays int) bool {
	return now.Sub(createdAt) > validityWindow(validityDays)
}

// EffectiveStatus is the status read paths should show. Any quote past
// its window reads as expired, whatever its stored status.
func EffectiveStatus(stored QuoteStatus, createdAt, now time.Time, validityDays int) QuoteStatus {
	if IsExpired(createdAt, now, validityDays) {
		return StatusExpired
	}
	return stored
}
