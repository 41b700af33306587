package reservation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petmily/service-reservation/internal/platform/domain"
)

// Reservation is the aggregate root for a booking between a member and a
// petsitter.
type Reservation struct {
	id          uuid.UUID
	memberID    uuid.UUID
	petsitterID uuid.UUID
	period      TimeRange
	address     string
	body        string
	petIDs      []uuid.UUID
	status      Status
	journalID   *uuid.UUID
	reviewID    *uuid.UUID

	confirmedAt *time.Time
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewReservation creates a reservation in REQUESTED state. The period must
// start after now.
func NewReservation(
	memberID uuid.UUID,
	petsitterID uuid.UUID,
	period TimeRange,
	address string,
	body string,
	petIDs []uuid.UUID,
	now time.Time,
) (*Reservation, error) {
	if memberID == uuid.Nil {
		return nil, domain.NewValidationError("member ID is required")
	}
	if petsitterID == uuid.Nil {
		return nil, domain.NewValidationError("petsitter ID is required")
	}
	if memberID == petsitterID {
		return nil, domain.NewValidationError("a petsitter cannot book themselves")
	}
	if !period.Start.After(now) {
		return nil, domain.NewValidationError("reservation must start in the future")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.NewValidationError("address is required")
	}
	if len(petIDs) == 0 {
		return nil, domain.NewValidationError("at least one pet is required")
	}

	ts := now.UTC()
	return &Reservation{
		id:          uuid.New(),
		memberID:    memberID,
		petsitterID: petsitterID,
		period:      period,
		address:     address,
		body:        strings.TrimSpace(body),
		petIDs:      dedupe(petIDs),
		status:      StatusRequested,
		version:     1,
		createdAt:   ts,
		updatedAt:   ts,
	}, nil
}

// Reconstruct rebuilds a Reservation from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	memberID uuid.UUID,
	petsitterID uuid.UUID,
	period TimeRange,
	address string,
	body string,
	petIDs []uuid.UUID,
	status Status,
	journalID *uuid.UUID,
	reviewID *uuid.UUID,
	confirmedAt *time.Time,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:          id,
		memberID:    memberID,
		petsitterID: petsitterID,
		period:      period,
		address:     address,
		body:        body,
		petIDs:      petIDs,
		status:      status,
		journalID:   journalID,
		reviewID:    reviewID,
		confirmedAt: confirmedAt,
		cancelledAt: cancelledAt,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the reservation's unique identifier.
func (r *Reservation) ID() uuid.UUID { return r.id }

// MemberID returns the requesting member's id.
func (r *Reservation) MemberID() uuid.UUID { return r.memberID }

// PetsitterID returns the booked petsitter's id.
func (r *Reservation) PetsitterID() uuid.UUID { return r.petsitterID }

// Period returns the booked time range.
func (r *Reservation) Period() TimeRange { return r.period }

// Address returns where the care takes place.
func (r *Reservation) Address() string { return r.address }

// Body returns the member's request note.
func (r *Reservation) Body() string { return r.body }

// PetIDs returns the pets covered by the reservation.
func (r *Reservation) PetIDs() []uuid.UUID { return r.petIDs }

// Status returns the current status.
func (r *Reservation) Status() Status { return r.status }

// JournalID returns the linked care journal, if any.
func (r *Reservation) JournalID() *uuid.UUID { return r.journalID }

// ReviewID returns the linked review, if any.
func (r *Reservation) ReviewID() *uuid.UUID { return r.reviewID }

// ConfirmedAt returns when the petsitter confirmed.
func (r *Reservation) ConfirmedAt() *time.Time { return r.confirmedAt }

// CancelledAt returns when the reservation was cancelled.
func (r *Reservation) CancelledAt() *time.Time { return r.cancelledAt }

// Version returns the entity version for optimistic locking.
func (r *Reservation) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }

// IsActive reports whether the reservation still holds the petsitter's time.
func (r *Reservation) IsActive() bool { return !r.status.IsCancelled() }

// --- Behavior ---

// Confirm transitions REQUESTED to CONFIRMED. Only the booked petsitter may
// confirm.
func (r *Reservation) Confirm(actorID uuid.UUID, now time.Time) error {
	if err := domain.RequireOwner("reservation", r.petsitterID, actorID); err != nil {
		return err
	}
	if err := r.transition(StatusConfirmed); err != nil {
		return err
	}
	ts := now.UTC()
	r.confirmedAt = &ts
	r.updatedAt = ts
	return nil
}

// CancelByPetsitter cancels a non-terminal reservation on the petsitter's
// behalf.
func (r *Reservation) CancelByPetsitter(actorID uuid.UUID, now time.Time) error {
	if err := domain.RequireOwner("reservation", r.petsitterID, actorID); err != nil {
		return err
	}
	return r.cancel(StatusCancelledByPetsitter, now)
}

// CancelByMember cancels a non-terminal reservation on the requesting
// member's behalf.
func (r *Reservation) CancelByMember(actorID uuid.UUID, now time.Time) error {
	if err := domain.RequireOwner("reservation", r.memberID, actorID); err != nil {
		return err
	}
	return r.cancel(StatusCancelledByMember, now)
}

// AttachJournal links a care journal. Re-attaching the same journal is a
// no-op and reports false.
func (r *Reservation) AttachJournal(journalID uuid.UUID, now time.Time) (bool, error) {
	if err := r.checkLinkable(journalID); err != nil {
		return false, err
	}
	if r.journalID != nil && *r.journalID == journalID {
		return false, nil
	}
	r.journalID = &journalID
	r.updatedAt = now.UTC()
	return true, nil
}

// AttachReview links a member review. Re-attaching the same review is a
// no-op and reports false.
func (r *Reservation) AttachReview(reviewID uuid.UUID, now time.Time) (bool, error) {
	if err := r.checkLinkable(reviewID); err != nil {
		return false, err
	}
	if r.reviewID != nil && *r.reviewID == reviewID {
		return false, nil
	}
	r.reviewID = &reviewID
	r.updatedAt = now.UTC()
	return true, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Reservation) IncrementVersion() {
	r.version++
}

func (r *Reservation) cancel(target Status, now time.Time) error {
	if err := r.transition(target); err != nil {
		return err
	}
	ts := now.UTC()
	r.cancelledAt = &ts
	r.updatedAt = ts
	return nil
}

func (r *Reservation) transition(target Status) error {
	if !r.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(r.status), string(target))
	}
	r.status = target
	return nil
}

func (r *Reservation) checkLinkable(id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.NewValidationError("linked record ID is required")
	}
	if r.status.IsCancelled() {
		return domain.NewStateError("cannot link records to a cancelled reservation")
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
