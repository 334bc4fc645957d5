package domain

import (
	"math"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/momentum/internal/shared/domain"
	"github.com/google/uuid"
)

// Category groups activities for points and aggregation.
type Category string

const (
	CategoryFitness   Category = "fitness"
	CategoryMindset   Category = "mindset"
	CategoryNutrition Category = "nutrition"
	CategoryWork      Category = "work"
	CategorySocial    Category = "social"
	CategoryOthers    Category = "others"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFitness,
	CategoryMindset,
	CategoryNutrition,
	CategoryWork,
	CategorySocial,
	CategoryOthers,
}

var basePoints = map[Category]int{
	CategoryFitness:   50,
	CategoryMindset:   40,
	CategoryNutrition: 30,
	CategoryWork:      40,
	CategorySocial:    30,
	CategoryOthers:    20,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	_, ok := basePoints[c]
	return ok
}

// ParseCategory normalizes user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", &ValidationError{Field: "category", Reason: "unknown category " + s}
	}
	return c, nil
}

// BasePoints returns the points an activity of this category is worth at normal intensity.
func BasePoints(c Category) int {
	return basePoints[c]
}

// Intensity is the declared effort of an activity.
type Intensity string

const (
	IntensityLight   Intensity = "light"
	IntensityNormal  Intensity = "normal"
	IntensityIntense Intensity = "intense"
)

// Multiplier scales base points. Unknown intensities score zero.
func (i Intensity) Multiplier() float64 {
	switch i {
	case IntensityLight:
		return 0.7
	case IntensityNormal:
		return 1.0
	case IntensityIntense:
		return 1.5
	default:
		return 0
	}
}

// VisualWeight is the heat value used when drawing the habit matrix.
// It is unrelated to Multiplier and never feeds into points.
func (i Intensity) VisualWeight() float64 {
	switch i {
	case IntensityLight:
		return 0.5
	case IntensityNormal:
		return 0.7
	case IntensityIntense:
		return 0.9
	default:
		return 0
	}
}

// IsValid reports whether i is a known intensity.
func (i Intensity) IsValid() bool {
	return i.Multiplier() > 0
}

// ParseIntensity normalizes user input; empty means normal.
func ParseIntensity(s string) (Intensity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IntensityNormal, nil
	}
	i := Intensity(s)
	if !i.IsValid() {
		return "", &ValidationError{Field: "intensity", Reason: "unknown intensity " + s}
	}
	return i, nil
}

// PointsFor computes the points awarded for an activity at creation time.
func PointsFor(c Category, i Intensity) int {
	return int(math.Round(float64(BasePoints(c)) * i.Multiplier()))
}

// Activity is one logged user action.
type Activity struct {
	sharedDomain.Aggregate
	userID       uuid.UUID
	name         string
	category     Category
	intensity    Intensity
	points       int
	date         Date
	timeOfDay    TimeOfDay
	durationMins int
	notes        string
}

// NewActivity validates the input and creates an activity with its points fixed.
func NewActivity(userID uuid.UUID, name string, category Category, intensity Intensity, date Date, at TimeOfDay) (*Activity, error) {
	a := &Activity{
		Aggregate: sharedDomain.NewAggregate(),
		userID:    userID,
		name:      strings.TrimSpace(name),
		category:  category,
		intensity: intensity,
		date:      date,
		timeOfDay: at,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.points = PointsFor(category, intensity)

	a.Record(NewActivityLogged(a))
	return a, nil
}

// RehydrateActivity recreates an activity from persisted state.
func RehydrateActivity(
	id, userID uuid.UUID,
	name string,
	category Category,
	intensity Intensity,
	points int,
	date Date,
	at TimeOfDay,
	durationMins int,
	notes string,
	createdAt, updatedAt time.Time,
) *Activity {
	return &Activity{
		Aggregate:    sharedDomain.RestoreAggregate(id, createdAt, updatedAt),
		userID:       userID,
		name:         name,
		category:     category,
		intensity:    intensity,
		points:       points,
		date:         date,
		timeOfDay:    at,
		durationMins: durationMins,
		notes:        notes,
	}
}

// Validate checks every field the metrics engine relies on.
func (a *Activity) Validate() error {
	switch {
	case a.userID == uuid.Nil:
		return &ValidationError{Field: "user_id", Reason: "required"}
	case a.name == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case !a.category.IsValid():
		return &ValidationError{Field: "category", Reason: "unknown category " + string(a.category)}
	case !a.intensity.IsValid():
		return &ValidationError{Field: "intensity", Reason: "unknown intensity " + string(a.intensity)}
	case a.date.IsZero():
		return &ValidationError{Field: "date", Reason: "required"}
	case !a.timeOfDay.valid():
		return &ValidationError{Field: "time", Reason: "out of range " + a.timeOfDay.String()}
	case a.points < 0:
		return &ValidationError{Field: "points", Reason: "must not be negative"}
	case a.durationMins < 0:
		return &ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	return nil
}

// SetDetails attaches the optional duration and notes.
func (a *Activity) SetDetails(durationMins int, notes string) error {
	if durationMins < 0 {
		return &ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	a.durationMins = durationMins
	a.notes = strings.TrimSpace(notes)
	a.Touch()
	return nil
}

// MarkDeleted records the deletion so subscribers recompute.
func (a *Activity) MarkDeleted() {
	a.Record(NewActivityDeleted(a))
}

// BelongsTo reports whether the activity is owned by userID.
func (a *Activity) BelongsTo(userID uuid.UUID) bool {
	return a.userID == userID
}

func (a *Activity) UserID() uuid.UUID    { return a.userID }
func (a *Activity) Name() string         { return a.name }
func (a *Activity) Category() Category   { return a.category }
func (a *Activity) Intensity() Intensity { return a.intensity }
func (a *Activity) Points() int          { return a.points }
func (a *Activity) Date() Date           { return a.date }
func (a *Activity) TimeOfDay() TimeOfDay { return a.timeOfDay }
func (a *Activity) DurationMins() int    { return a.durationMins }
func (a *Activity) Notes() string        { return a.notes }
