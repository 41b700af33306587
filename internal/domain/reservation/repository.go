package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReservationRepository defines the persistence contract for reservations.
type ReservationRepository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction; fn's error rolls it back.
	Transaction(ctx context.Context, fn func(repo ReservationRepository) error) error

	// LockPetsitter serialises calendar writes for one petsitter until the
	// surrounding transaction ends.
	LockPetsitter(ctx context.Context, petsitterID uuid.UUID) error

	// FindByID retrieves a reservation by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindByMemberID retrieves a member's reservations with pagination.
	FindByMemberID(ctx context.Context, memberID uuid.UUID, filter Filter, page, limit int) ([]*Reservation, int64, error)

	// FindByPetsitterID retrieves a petsitter's reservations with pagination.
	FindByPetsitterID(ctx context.Context, petsitterID uuid.UUID, filter Filter, page, limit int) ([]*Reservation, int64, error)

	// FindActiveOverlapping returns non-cancelled reservations overlapping
	// window. A nil petsitterID searches across all petsitters.
	FindActiveOverlapping(ctx context.Context, petsitterID *uuid.UUID, window TimeRange) ([]*Reservation, error)

	// FindSchedule returns a petsitter's non-cancelled reservations that have
	// not ended by from, ordered by start time.
	FindSchedule(ctx context.Context, petsitterID uuid.UUID, from time.Time) ([]*Reservation, error)

	// ListAll retrieves all reservations with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Reservation, int64, error)

	// CountByStatus returns reservation counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new reservation.
	Save(ctx context.Context, r *Reservation) error

	// Update persists changes with optimistic locking against Version()-1.
	Update(ctx context.Context, r *Reservation) error
}
