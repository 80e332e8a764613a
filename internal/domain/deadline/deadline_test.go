package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestDaysLeft(t *testing.T) {
	tests := []struct {
		name string
		dl   time.Time
		want int
	}{
		{"exactly 14 days", base.Add(14 * 24 * time.Hour), 14},
		{"one second short of 14 days", base.Add(14*24*time.Hour - time.Second), 13},
		{"13 days 23:59:59", base.Add(13*24*time.Hour + 23*time.Hour + 59*time.Minute + 59*time.Second), 13},
		{"exactly 1 day", base.Add(24 * time.Hour), 1},
		{"30 seconds ahead", base.Add(30 * time.Second), 0},
		{"exactly now", base, 0},
		{"one second past", base.Add(-time.Second), -1},
		{"one day past", base.Add(-24 * time.Hour), -1},
		{"one day one second past", base.Add(-24*time.Hour - time.Second), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysLeft(tt.dl, base))
		})
	}
}

func TestDaysLeft_NonIncreasing(t *testing.T) {
	dl := base.Add(5 * 24 * time.Hour)
	prev := DaysLeft(dl, base)
	for i := 1; i <= 14*24; i++ {
		now := base.Add(time.Duration(i) * time.Hour)
		got := DaysLeft(dl, now)
		require.LessOrEqual(t, got, prev, "now=%s", now)
		prev = got
	}
}

func TestThreshold(t *testing.T) {
	for _, want := range Thresholds {
		got, ok := Threshold(want)
		require.True(t, ok, "threshold %d", want)
		assert.Equal(t, want, got)
	}
	for _, miss := range []int{15, 13, 8, 6, 4, 2, 0, -1, -14, 100} {
		_, ok := Threshold(miss)
		assert.False(t, ok, "days left %d must not match", miss)
	}
}

func TestUrgency(t *testing.T) {
	ptr := func(d time.Time) *time.Time { return &d }

	tests := []struct {
		name string
		dl   *time.Time
		want Band
	}{
		{"no deadline", nil, BandNeutral},
		{"15 days", ptr(base.Add(15 * 24 * time.Hour)), BandFar},
		{"exactly 14 days", ptr(base.Add(14 * 24 * time.Hour)), BandSoon},
		{"10 days", ptr(base.Add(10 * 24 * time.Hour)), BandSoon},
		{"5 days", ptr(base.Add(5 * 24 * time.Hour)), BandApproaching},
		{"2 days", ptr(base.Add(2 * 24 * time.Hour)), BandUrgent},
		{"half a day", ptr(base.Add(12 * time.Hour)), BandCritical},
		{"thirty seconds", ptr(base.Add(30 * time.Second)), BandCritical},
		{"exactly now", ptr(base), BandOverdue},
		{"in the past", ptr(base.Add(-time.Hour)), BandOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Urgency(tt.dl, base))
		})
	}
}

// The integer and float computations disagree near the deadline on
// purpose: a deadline seconds away has no whole day left (so no
// threshold can fire) while the display still shows critical.
func TestUrgency_DisagreesWithDaysLeft(t *testing.T) {
	dl := base.Add(30 * time.Second)

	assert.Equal(t, 0, DaysLeft(dl, base))
	_, ok := Threshold(DaysLeft(dl, base))
	assert.False(t, ok)
	assert.Equal(t, BandCritical, Urgency(&dl, base))
}

func TestBandColor(t *testing.T) {
	assert.Equal(t, "#44ce1b", BandFar.Color())
	assert.Equal(t, "#e51f1f", BandCritical.Color())
	assert.Equal(t, "#6a6af7", BandOverdue.Color())
	assert.Equal(t, "#f8f9fa", BandNeutral.Color())
}
