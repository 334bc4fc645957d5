package queries

import (
	"context"
	"sort"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/google/uuid"
)

// ActivityDTO is a data transfer object for activities.
type ActivityDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Intensity    string    `json:"intensity"`
	Points       int       `json:"points"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	DurationMins int       `json:"duration_mins,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListActivitiesQuery contains the parameters for listing activities.
// Empty From and To leave the range open on that side.
type ListActivitiesQuery struct {
	UserID     uuid.UUID
	From       string
	To         string
	Categories []string
	Limit      int
}

// ListActivitiesHandler handles the ListActivitiesQuery.
type ListActivitiesHandler struct {
	activityRepo domain.ActivityRepository
}

// NewListActivitiesHandler creates a new ListActivitiesHandler.
func NewListActivitiesHandler(activityRepo domain.ActivityRepository) *ListActivitiesHandler {
	return &ListActivitiesHandler{activityRepo: activityRepo}
}

// Handle executes the ListActivitiesQuery. Results are newest first.
func (h *ListActivitiesHandler) Handle(ctx context.Context, query ListActivitiesQuery) ([]ActivityDTO, error) {
	filter, err := query.filter()
	if err != nil {
		return nil, err
	}

	activities, err := h.activityRepo.FindByUser(ctx, query.UserID, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(activities, func(i, j int) bool {
		a, b := activities[i], activities[j]
		if a.Date() != b.Date() {
			return a.Date().After(b.Date())
		}
		return a.TimeOfDay().String() > b.TimeOfDay().String()
	})
	if query.Limit > 0 && len(activities) > query.Limit {
		activities = activities[:query.Limit]
	}

	dtos := make([]ActivityDTO, 0, len(activities))
	for _, a := range activities {
		dtos = append(dtos, ToActivityDTO(a))
	}
	return dtos, nil
}

func (q ListActivitiesQuery) filter() (domain.ActivityFilter, error) {
	var filter domain.ActivityFilter
	var err error
	if q.From != "" {
		if filter.From, err = domain.ParseDate(q.From); err != nil {
			return filter, err
		}
	}
	if q.To != "" {
		if filter.To, err = domain.ParseDate(q.To); err != nil {
			return filter, err
		}
	}
	for _, c := range q.Categories {
		category, err := domain.ParseCategory(c)
		if err != nil {
			return filter, err
		}
		filter.Categories = append(filter.Categories, category)
	}
	return filter, nil
}

// ToActivityDTO maps an activity to its transfer form.
func ToActivityDTO(a *domain.Activity) ActivityDTO {
	return ActivityDTO{
		ID:           a.ID(),
		Name:         a.Name(),
		Category:     string(a.Category()),
		Intensity:    string(a.Intensity()),
		Points:       a.Points(),
		Date:         a.Date().String(),
		Time:         a.TimeOfDay().String(),
		DurationMins: a.DurationMins(),
		Notes:        a.Notes(),
		CreatedAt:    a.CreatedAt(),
	}
}
