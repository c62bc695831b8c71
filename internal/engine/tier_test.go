package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTier(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) *time.Time {
		ts := now.AddDate(0, 0, -d)
		return &ts
	}

	tests := []struct {
		name         string
		accessCount  int
		lastAccessed *time.Time
		want         string
	}{
		{"high count alone is hot", 5, daysAgo(40), TierHot},
		{"recent access alone is hot", 0, daysAgo(3), TierHot},
		{"boundary 7 days is hot", 0, daysAgo(7), TierHot},
		{"count 2 old access is warm", 2, daysAgo(90), TierWarm},
		{"count 1 within 30 days is warm", 1, daysAgo(10), TierWarm},
		{"boundary 30 days is warm", 0, daysAgo(30), TierWarm},
		{"never accessed is cold", 0, nil, TierCold},
		{"count 1 stale is cold", 1, daysAgo(60), TierCold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tier(tt.accessCount, tt.lastAccessed, now))
		})
	}
}
