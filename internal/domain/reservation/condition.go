package reservation

import (
	"strings"
	"time"

	"github.com/petmily/service-reservation/internal/platform/domain"
)

// Condition names accepted by the reservation history queries.
const (
	ConditionRequested = "requested"
	ConditionConfirmed = "confirmed"
	ConditionCancelled = "cancelled"
	ConditionUpcoming  = "upcoming"
	ConditionFinished  = "finished"
)

// Filter narrows a reservation history query. Zero fields do not filter.
type Filter struct {
	Statuses    []Status
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// FilterForCondition translates a client condition string into a Filter.
// An empty condition matches everything.
func FilterForCondition(condition string, now time.Time) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "":
		return Filter{}, nil
	case ConditionRequested:
		return Filter{Statuses: []Status{StatusRequested}}, nil
	case ConditionConfirmed:
		return Filter{Statuses: []Status{StatusConfirmed}}, nil
	case ConditionCancelled:
		return Filter{Statuses: CancelledStatuses}, nil
	case ConditionUpcoming:
		return Filter{Statuses: ActiveStatuses, StartsAfter: &now}, nil
	case ConditionFinished:
		return Filter{Statuses: ActiveStatuses, EndsBefore: &now}, nil
	default:
		return Filter{}, domain.NewValidationError("unknown reservation condition: " + condition)
	}
}

// Matches reports whether r satisfies the filter.
func (f Filter) Matches(r *Reservation) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if r.Status() == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.StartsAfter != nil && !r.Period().Start.After(*f.StartsAfter) {
		return false
	}
	if f.EndsBefore != nil && !r.Period().End.Before(*f.EndsBefore) {
		return false
	}
	return true
}
