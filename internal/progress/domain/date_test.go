package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2024-02-28")

	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2023-12-31", MustParseDate("2024-01-01").AddDays(-1).String())
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))
	assert.Equal(t, -2, d.DaysSince(d.AddDays(2)))
	assert.Equal(t, 3652058, NewDate(9999, 12, 31).DaysSince(NewDate(1, 1, 1)), "beyond the Duration range")
	assert.Equal(t, -3652058, NewDate(1, 1, 1).DaysSince(NewDate(9999, 12, 31)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, time.Wednesday, d.Weekday())
}

func TestDate_AcrossDSTIsWholeDays(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	before := DateOf(time.Date(2024, 3, 30, 23, 30, 0, 0, loc))
	after := DateOf(time.Date(2024, 3, 31, 23, 30, 0, 0, loc))

	assert.Equal(t, 1, after.DaysSince(before))
}

func TestParseDate_Malformed(t *testing.T) {
	_, err := ParseDate("2024/01/01")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidActivity)
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}

	b, err := json.Marshal(wrapper{Date: MustParseDate("2024-01-02")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-02"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-05-06"}`), &w))
	assert.Equal(t, NewDate(2024, time.May, 6), w.Date)
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("07:45")
	require.NoError(t, err)
	assert.Equal(t, 7, tod.Hour())
	assert.Equal(t, 45, tod.Minute())

	tod, err = ParseTimeOfDay("23:10:59")
	require.NoError(t, err)
	assert.Equal(t, "23:10", tod.String())

	_, err = ParseTimeOfDay("7pm")
	assert.Error(t, err)
}

func TestClock_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	instant := time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)

	clock := FixedClock(instant.In(loc))

	assert.Equal(t, "2024-01-01", clock.Today().String())
	assert.Equal(t, loc, clock.Location())
}
