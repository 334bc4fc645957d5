package metrics

import (
	"math"
	"sort"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
)

// MatrixDays is the trailing window of the habit matrix.
const MatrixDays = 7

// DailySummary is today's points by category and progress toward the goal.
type DailySummary struct {
	Date          domain.Date `json:"date"`
	DailyPoints   int         `json:"daily_points"`
	ActivityCount int         `json:"activity_count"`
	DailyGoal     int         `json:"daily_goal"`
	GoalProgress  int         `json:"goal_progress"`
	ByCategory    Series      `json:"by_category"`
}

// BuildDailySummary summarizes the activities of one date. Activities on
// other dates are ignored.
func BuildDailySummary(activities []*domain.Activity, date domain.Date, dailyGoal int) (DailySummary, error) {
	summary := EmptyDailySummary(date, dailyGoal)
	day := onDate(activities, date)

	points := TotalPoints(day)
	byCategory, err := AggregateWithShares(day, GroupByCategory, points)
	if err != nil {
		return summary, err
	}

	summary.DailyPoints = points
	summary.ActivityCount = len(day)
	summary.ByCategory = byCategory
	summary.GoalProgress = GoalProgress(points, dailyGoal)
	return summary, nil
}

// EmptyDailySummary is the well-formed zero value for a date.
func EmptyDailySummary(date domain.Date, dailyGoal int) DailySummary {
	return DailySummary{Date: date, DailyGoal: dailyGoal, ByCategory: Series{}}
}

// GoalProgress is min(round(points/goal*100), 100).
func GoalProgress(points, goal int) int {
	p := percent(points, goal)
	if p > 100 {
		return 100
	}
	return p
}

// CategoryHours is one category's points per hour of the day.
type CategoryHours struct {
	Category domain.Category `json:"category"`
	Hours    [24]int         `json:"hours"`
}

// Timeline is the hourly breakdown of one date. Totals are per-hour sums
// across categories, not a cumulative running total, so they can go down.
type Timeline struct {
	Date       domain.Date     `json:"date"`
	Categories []CategoryHours `json:"categories"`
	Totals     [24]int         `json:"totals"`
}

// BuildTimeline buckets one date's activities by hour for every category.
func BuildTimeline(activities []*domain.Activity, date domain.Date) (Timeline, error) {
	timeline := EmptyTimeline(date)
	day := onDate(activities, date)
	if err := validateAll(day); err != nil {
		return timeline, err
	}

	index := make(map[domain.Category]int, len(domain.Categories))
	for i, c := range domain.Categories {
		index[c] = i
	}
	for _, a := range day {
		h := a.TimeOfDay().Hour()
		timeline.Categories[index[a.Category()]].Hours[h] += a.Points()
		timeline.Totals[h] += a.Points()
	}
	return timeline, nil
}

// EmptyTimeline has a zero series for every category.
func EmptyTimeline(date domain.Date) Timeline {
	timeline := Timeline{Date: date, Categories: make([]CategoryHours, len(domain.Categories))}
	for i, c := range domain.Categories {
		timeline.Categories[i].Category = c
	}
	return timeline
}

// HabitCell is one day of a habit row.
type HabitCell struct {
	Date      domain.Date `json:"date"`
	Completed bool        `json:"completed"`
	Points    int         `json:"points"`
	// Intensity is a display weight from the logged intensity, not a points factor.
	Intensity float64 `json:"intensity"`
}

// HabitRow is the matrix line of one activity name.
type HabitRow struct {
	Name           string          `json:"name"`
	Category       domain.Category `json:"category"`
	Cells          []HabitCell     `json:"cells"`
	CurrentStreak  int             `json:"current_streak"`
	BestStreak     int             `json:"best_streak"`
	CompletionRate int             `json:"completion_rate"`
}

// HabitMatrix groups activities by name over the trailing week.
type HabitMatrix struct {
	Days []domain.Date `json:"days"`
	Rows []HabitRow    `json:"rows"`
}

// BuildHabitMatrix builds one row per distinct activity name seen in the
// trailing week. Streaks use the name's whole history in activities.
func BuildHabitMatrix(activities []*domain.Activity, reference domain.Date) (HabitMatrix, error) {
	matrix := EmptyHabitMatrix(reference)
	if err := validateAll(activities); err != nil {
		return matrix, err
	}

	start := matrix.Days[0]
	byName := make(map[string][]*domain.Activity)
	var names []string
	for _, a := range activities {
		if _, ok := byName[a.Name()]; !ok {
			names = append(names, a.Name())
		}
		byName[a.Name()] = append(byName[a.Name()], a)
	}
	sort.Strings(names)

	for _, name := range names {
		history := byName[name]
		row := HabitRow{Name: name, Cells: make([]HabitCell, MatrixDays)}
		for i, d := range matrix.Days {
			row.Cells[i].Date = d
		}

		inWindow := false
		latest := domain.Date{}
		for _, a := range history {
			offset := a.Date().DaysSince(start)
			if offset < 0 || offset >= MatrixDays {
				continue
			}
			inWindow = true
			cell := &row.Cells[offset]
			cell.Completed = true
			cell.Points += a.Points()
			cell.Intensity = math.Max(cell.Intensity, a.Intensity().VisualWeight())
			if latest.IsZero() || !a.Date().Before(latest) {
				latest = a.Date()
				row.Category = a.Category()
			}
		}
		if !inWindow {
			continue
		}

		completed := 0
		for _, c := range row.Cells {
			if c.Completed {
				completed++
			}
		}
		streaks := StreaksFromActivities(history, reference)
		row.CurrentStreak = streaks.Current
		row.BestStreak = streaks.Longest
		row.CompletionRate = percent(completed, MatrixDays)
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix, nil
}

// EmptyHabitMatrix has the week's days and no rows.
func EmptyHabitMatrix(reference domain.Date) HabitMatrix {
	days := make([]domain.Date, MatrixDays)
	for i := range days {
		days[i] = reference.AddDays(i - (MatrixDays - 1))
	}
	return HabitMatrix{Days: days, Rows: []HabitRow{}}
}

// Analytics are the KPIs of a trailing range.
type Analytics struct {
	From               domain.Date      `json:"from"`
	To                 domain.Date      `json:"to"`
	RangeDays          int              `json:"range_days"`
	TotalPoints        int              `json:"total_points"`
	TotalActivities    int              `json:"total_activities"`
	ActiveDays         int              `json:"active_days"`
	AvgPointsPerDay    int              `json:"avg_points_per_active_day"`
	TotalMinutes       int              `json:"total_minutes"`
	TopCategory        domain.Category  `json:"top_category,omitempty"`
	BestWeekday        string           `json:"best_weekday,omitempty"`
	Streaks            StreakState      `json:"streaks"`
	Consistency        ConsistencyScore `json:"consistency"`
	CategoryShares     Series           `json:"category_shares"`
	WeekdayAverages    Series           `json:"weekday_averages"`
	HourlyDistribution Series           `json:"hourly_distribution"`
	PointsPerDay       Series           `json:"points_per_day"`
}

// BuildAnalytics computes range KPIs. inRange holds the activities of
// [reference-rangeDays+1, reference]; history is the full log for streaks.
func BuildAnalytics(inRange, history []*domain.Activity, reference domain.Date, rangeDays int, scorer *ConsistencyScorer) (Analytics, error) {
	out := EmptyAnalytics(reference, rangeDays, scorer)
	if rangeDays <= 0 {
		return out, ErrInvalidWindow
	}
	if scorer == nil {
		scorer = NewConsistencyScorer(DefaultConsistencyConfig())
	}

	total := TotalPoints(inRange)
	shares, err := AggregateWithShares(inRange, GroupByCategory, total)
	if err != nil {
		return out, err
	}
	weekdays, err := Aggregate(inRange, GroupByWeekday)
	if err != nil {
		return out, err
	}
	hours, err := Aggregate(inRange, GroupByHour)
	if err != nil {
		return out, err
	}
	perDay, err := Aggregate(inRange, GroupByDay)
	if err != nil {
		return out, err
	}
	consistency, err := scorer.Score(history, rangeDays, reference)
	if err != nil {
		return out, err
	}

	out.TotalPoints = total
	out.TotalActivities = len(inRange)
	out.ActiveDays = len(ActiveDates(inRange))
	if out.ActiveDays > 0 {
		out.AvgPointsPerDay = int(math.Round(float64(total) / float64(out.ActiveDays)))
	}
	for _, a := range inRange {
		out.TotalMinutes += a.DurationMins()
	}
	out.TopCategory = domain.Category(maxKey(shares))
	out.BestWeekday = maxKey(weekdays)
	out.Streaks = StreaksFromActivities(history, reference)
	out.Consistency = consistency
	out.CategoryShares = shares
	out.WeekdayAverages = weekdays
	out.HourlyDistribution = hours
	out.PointsPerDay = perDay
	return out, nil
}

// EmptyAnalytics is the zero view, with fixed-size series still populated.
func EmptyAnalytics(reference domain.Date, rangeDays int, scorer *ConsistencyScorer) Analytics {
	hours, _ := Aggregate(nil, GroupByHour)
	weekdays, _ := Aggregate(nil, GroupByWeekday)
	out := Analytics{
		To:                 reference,
		RangeDays:          rangeDays,
		CategoryShares:     Series{},
		WeekdayAverages:    weekdays,
		HourlyDistribution: hours,
		PointsPerDay:       Series{},
	}
	if rangeDays > 0 {
		out.From = reference.AddDays(-(rangeDays - 1))
	}
	if scorer != nil {
		out.Consistency.RecoveryRate = scorer.Config().RecoveryDefault
	}
	return out
}

// maxKey returns the key of the largest positive value; ties keep the first.
func maxKey(s Series) string {
	best, key := 0, ""
	for _, p := range s {
		if p.Value > best {
			best, key = p.Value, p.Key
		}
	}
	return key
}

func onDate(activities []*domain.Activity, date domain.Date) []*domain.Activity {
	day := make([]*domain.Activity, 0, len(activities))
	for _, a := range activities {
		if a != nil && a.Date() == date {
			day = append(day, a)
		}
	}
	return day
}
