package reservation

import (
	"time"

	"github.com/petmily/service-reservation/internal/platform/domain"
)

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start_at"`
	End   time.Time `json:"end_at"`
}

// NewTimeRange validates that end is strictly after start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, domain.NewValidationError("start and end time are required")
	}
	if !end.After(start) {
		return TimeRange{}, domain.NewValidationError("end time must be after start time")
	}
	return TimeRange{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether the two ranges share any instant. Ranges that
// only touch at an endpoint do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Duration returns the length of the range.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
