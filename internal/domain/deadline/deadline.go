// Package deadline holds the pure time arithmetic behind reminder
// triggering and display urgency. The two computations are deliberately
// separate: DaysLeft floors to whole days and drives the discrete
// reminder thresholds, while Urgency works on fractional days and only
// ever picks a display band. They disagree at boundaries on purpose
// (DaysLeft can be 0 while Urgency still reports Critical), so neither
// may be expressed in terms of the other.
package deadline

import (
	"math"
	"time"
)

const secondsPerDay = 86400

// Thresholds is the fixed, ordered set of days-before-deadline at which
// a single reminder fires.
var Thresholds = [...]int{14, 7, 3, 1}

// DaysLeft returns the number of whole days between now and the
// deadline, flooring toward negative infinity: a deadline one second in
// the past yields -1, not 0.
func DaysLeft(deadline, now time.Time) int {
	return int(math.Floor(deadline.Sub(now).Seconds() / secondsPerDay))
}

// Threshold reports whether daysLeft matches a reminder threshold
// exactly. Matching is strict equality, not a range: a scan cycle that
// skips a calendar day misses that threshold for good.
func Threshold(daysLeft int) (int, bool) {
	for _, t := range Thresholds {
		if daysLeft == t {
			return t, true
		}
	}
	return 0, false
}

// Band classifies how close a deadline is, for display only.
type Band int

const (
	BandNeutral Band = iota // no deadline
	BandFar
	BandSoon
	BandApproaching
	BandUrgent
	BandCritical
	BandOverdue
)

func (b Band) String() string {
	switch b {
	case BandFar:
		return "far"
	case BandSoon:
		return "soon"
	case BandApproaching:
		return "approaching"
	case BandUrgent:
		return "urgent"
	case BandCritical:
		return "critical"
	case BandOverdue:
		return "overdue"
	default:
		return "neutral"
	}
}

// Color returns the hex color a client renders for the band.
func (b Band) Color() string {
	switch b {
	case BandFar:
		return "#44ce1b"
	case BandSoon:
		return "#bbdb44"
	case BandApproaching:
		return "#fad928"
	case BandUrgent:
		return "#f2a134"
	case BandCritical:
		return "#e51f1f"
	case BandOverdue:
		return "#6a6af7"
	default:
		return "#f8f9fa"
	}
}

// Urgency maps a deadline to its display band using fractional days
// remaining. A nil deadline is neutral; exactly zero days counts as
// overdue (the deadline is not in the future).
func Urgency(deadline *time.Time, now time.Time) Band {
	if deadline == nil {
		return BandNeutral
	}
	days := deadline.Sub(now).Seconds() / secondsPerDay
	switch {
	case days > 14:
		return BandFar
	case days > 7:
		return BandSoon
	case days > 3:
		return BandApproaching
	case days > 1:
		return BandUrgent
	case days > 0:
		return BandCritical
	default:
		return BandOverdue
	}
}
