package reservation

import "fmt"

// Status represents the current state of a reservation in its lifecycle.
type Status string

const (
	StatusRequested            Status = "REQUESTED"
	StatusConfirmed            Status = "CONFIRMED"
	StatusCancelledByMember    Status = "CANCELLED_BY_MEMBER"
	StatusCancelledByPetsitter Status = "CANCELLED_BY_PETSITTER"
)

// validTransitions defines the state machine for reservation status transitions.
var validTransitions = map[Status][]Status{
	StatusRequested:            {StatusConfirmed, StatusCancelledByMember, StatusCancelledByPetsitter},
	StatusConfirmed:            {StatusCancelledByMember, StatusCancelledByPetsitter},
	StatusCancelledByMember:    {},
	StatusCancelledByPetsitter: {},
}

// ActiveStatuses are the statuses that occupy a petsitter's calendar.
var ActiveStatuses = []Status{StatusRequested, StatusConfirmed}

// CancelledStatuses are the terminal cancellation statuses.
var CancelledStatuses = []Status{StatusCancelledByMember, StatusCancelledByPetsitter}

// IsValid returns true if the status is a recognized reservation status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsCancelled returns true for either cancellation status.
func (s Status) IsCancelled() bool {
	return s == StatusCancelledByMember || s == StatusCancelledByPetsitter
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid reservation status: %s", s)
	}
	return status, nil
}
