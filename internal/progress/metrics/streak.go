// Package metrics turns an activity log into derived progress numbers.
//
// Everything here is a pure function of its arguments: no I/O, no caches,
// no shared state. Callers fetch the activities and hand over a snapshot.
package metrics

import (
	"sort"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
)

// StreakState is the current and longest run of consecutive active days.
type StreakState struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// ComputeStreaks walks the distinct dates newest first. The current streak
// only counts when the newest date is the reference date or the day before;
// a missed day zeroes Current but never shrinks Longest.
func ComputeStreaks(dates []domain.Date, reference domain.Date) StreakState {
	sorted := distinctDescending(dates)
	if len(sorted) == 0 {
		return StreakState{}
	}

	var (
		run        = 1
		longest    = 1
		firstRun   = 0
		inFirstRun = true
	)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].DaysSince(sorted[i]) == 1 {
			run++
		} else {
			if inFirstRun {
				firstRun = run
				inFirstRun = false
			}
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	if inFirstRun {
		firstRun = run
	}

	state := StreakState{Longest: longest}
	if gap := reference.DaysSince(sorted[0]); gap == 0 || gap == 1 {
		state.Current = firstRun
	}
	return state
}

// StreaksFromActivities computes streaks over the activity dates.
func StreaksFromActivities(activities []*domain.Activity, reference domain.Date) StreakState {
	return ComputeStreaks(ActiveDates(activities), reference)
}

// ActiveDates returns the distinct dates with at least one activity, newest first.
func ActiveDates(activities []*domain.Activity) []domain.Date {
	dates := make([]domain.Date, 0, len(activities))
	for _, a := range activities {
		dates = append(dates, a.Date())
	}
	return distinctDescending(dates)
}

func distinctDescending(dates []domain.Date) []domain.Date {
	seen := make(map[domain.Date]struct{}, len(dates))
	out := make([]domain.Date, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}
