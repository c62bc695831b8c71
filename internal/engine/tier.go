package engine

import "time"

// Access tiers. Derived at read time for display and summaries only; tiering
// never affects ordering or filtering.
const (
	TierHot  = "hot"
	TierWarm = "warm"
	TierCold = "cold"
)

// Tier classifies a record's recent usefulness. A record is hot when its
// access count reaches 5 or it was accessed within 7 days, warm at count 2
// or 30 days, and cold otherwise. Either threshold alone is enough.
func Tier(accessCount int, lastAccessed *time.Time, now time.Time) string {
	switch {
	case accessCount >= 5 || accessedWithin(lastAccessed, now, 7):
		return TierHot
	case accessCount >= 2 || accessedWithin(lastAccessed, now, 30):
		return TierWarm
	default:
		return TierCold
	}
}

func accessedWithin(lastAccessed *time.Time, now time.Time, days int) bool {
	if lastAccessed == nil {
		return false
	}
	return now.Sub(*lastAccessed) <= time.Duration(days)*24*time.Hour
}
