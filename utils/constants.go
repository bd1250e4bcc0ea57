// File: utils/constants.go
package utils

// SessionCachePrefix is the prefix used for Redis dialogue session keys.
const SessionCachePrefix = "foodbot:session:"

// Dialogue outcomes recorded in DialoguesFinished.
const (
	OutcomeCompleted = "completed"
	OutcomeDeclined  = "declined"
	OutcomeFailed    = "search_failed"
)
