package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
)

// ErrInvalidGroupBy is returned for an unknown grouping key.
var ErrInvalidGroupBy = errors.New("invalid group by")

// GroupBy selects the key activities are bucketed by.
type GroupBy string

const (
	GroupByDay      GroupBy = "day"
	GroupByCategory GroupBy = "category"
	GroupByHour     GroupBy = "hour"
	GroupByWeekday  GroupBy = "weekday"
)

// ParseGroupBy validates a grouping key from user input.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(s); g {
	case GroupByDay, GroupByCategory, GroupByHour, GroupByWeekday:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGroupBy, s)
}

// Point is one bucket of an aggregation.
type Point struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
	// Share is round(Value/total*100), only filled by AggregateWithShares.
	Share int `json:"share,omitempty"`
}

// Series is an ordered aggregation result.
type Series []Point

// Value returns the value for key, or 0.
func (s Series) Value(key string) int {
	for _, p := range s {
		if p.Key == key {
			return p.Value
		}
	}
	return 0
}

// Total sums every bucket.
func (s Series) Total() int {
	total := 0
	for _, p := range s {
		total += p.Value
	}
	return total
}

// Map returns the buckets keyed by name.
func (s Series) Map() map[string]int {
	m := make(map[string]int, len(s))
	for _, p := range s {
		m[p.Key] = p.Value
	}
	return m
}

// Aggregate groups activities by key and sums their points.
//
// Hour grouping always yields 24 buckets and weekday grouping always yields
// 7 buckets (Sunday first), zero-filled. Weekday values are averages: the
// weekday's points divided by the distinct dates falling on that weekday.
func Aggregate(activities []*domain.Activity, groupBy GroupBy) (Series, error) {
	if err := validateAll(activities); err != nil {
		return nil, err
	}

	switch groupBy {
	case GroupByDay:
		return byDay(activities), nil
	case GroupByCategory:
		return byCategory(activities), nil
	case GroupByHour:
		return byHour(activities), nil
	case GroupByWeekday:
		return byWeekday(activities), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidGroupBy, groupBy)
	}
}

// AggregateWithShares is Aggregate plus each bucket's percentage of total.
// Shares are rounded independently and need not sum to exactly 100.
func AggregateWithShares(activities []*domain.Activity, groupBy GroupBy, total int) (Series, error) {
	series, err := Aggregate(activities, groupBy)
	if err != nil {
		return nil, err
	}
	for i := range series {
		series[i].Share = percent(series[i].Value, total)
	}
	return series, nil
}

// TotalPoints sums the points of all activities.
func TotalPoints(activities []*domain.Activity) int {
	total := 0
	for _, a := range activities {
		total += a.Points()
	}
	return total
}

func validateAll(activities []*domain.Activity) error {
	for _, a := range activities {
		if a == nil {
			return &domain.ValidationError{Field: "activity", Reason: "nil record"}
		}
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func byDay(activities []*domain.Activity) Series {
	sums := make(map[domain.Date]int)
	for _, a := range activities {
		sums[a.Date()] += a.Points()
	}
	dates := make([]domain.Date, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := make(Series, 0, len(dates))
	for _, d := range dates {
		series = append(series, Point{Key: d.String(), Value: sums[d]})
	}
	return series
}

func byCategory(activities []*domain.Activity) Series {
	sums := make(map[domain.Category]int)
	for _, a := range activities {
		sums[a.Category()] += a.Points()
	}
	series := make(Series, 0, len(sums))
	for _, c := range domain.Categories {
		if v, ok := sums[c]; ok {
			series = append(series, Point{Key: string(c), Value: v})
		}
	}
	return series
}

// HourKey formats an hour bucket key.
func HourKey(hour int) string {
	return fmt.Sprintf("%02d", hour)
}

func byHour(activities []*domain.Activity) Series {
	var sums [24]int
	for _, a := range activities {
		sums[a.TimeOfDay().Hour()] += a.Points()
	}
	series := make(Series, 24)
	for h := range sums {
		series[h] = Point{Key: HourKey(h), Value: sums[h]}
	}
	return series
}

func byWeekday(activities []*domain.Activity) Series {
	var sums [7]int
	var days [7]map[domain.Date]struct{}
	for _, a := range activities {
		wd := a.Date().Weekday()
		sums[wd] += a.Points()
		if days[wd] == nil {
			days[wd] = make(map[domain.Date]struct{})
		}
		days[wd][a.Date()] = struct{}{}
	}

	series := make(Series, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		avg := 0
		if n := len(days[wd]); n > 0 {
			avg = int(math.Round(float64(sums[wd]) / float64(n)))
		}
		series[wd] = Point{Key: wd.String(), Value: avg}
	}
	return series
}

// percent returns round(part/whole*100), or 0 for a non-positive whole.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
