package metrics

import (
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/google/uuid"
)

var testUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func d(s string) domain.Date {
	return domain.MustParseDate(s)
}

// act builds an activity with explicit points, bypassing the points formula.
func act(date string, points int, category domain.Category) *domain.Activity {
	return actAt(date, 12, points, category)
}

func actAt(date string, hour, points int, category domain.Category) *domain.Activity {
	return named("activity", date, hour, points, category, domain.IntensityNormal)
}

func named(name, date string, hour, points int, category domain.Category, intensity domain.Intensity) *domain.Activity {
	now := time.Now()
	return domain.RehydrateActivity(uuid.New(), testUserID, name, category, intensity, points,
		d(date), domain.NewTimeOfDay(hour, 0), 0, "", now, now)
}

func dates(ss ...string) []domain.Date {
	out := make([]domain.Date, len(ss))
	for i, s := range ss {
		out[i] = d(s)
	}
	return out
}
