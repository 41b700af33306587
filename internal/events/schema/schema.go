// Package schema holds the Kafka topics, event types and payloads this
// service produces and consumes.
package schema

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies this service in CloudEvent envelopes.
const Source = "service-reservation"

// Topics.
const (
	TopicReservationEvents = "reservation.events"
	TopicPetEvents         = "pet.events"
	TopicJournalEvents     = "journal.events"
	TopicReviewEvents      = "review.events"
)

// Produced event types.
const (
	ReservationRequested            = "reservation.requested"
	ReservationConfirmed            = "reservation.confirmed"
	ReservationCancelledByMember    = "reservation.cancelled_by_member"
	ReservationCancelledByPetsitter = "reservation.cancelled_by_petsitter"
	PetPhotoOrphaned                = "pet.photo_orphaned"
)

// Consumed event types.
const (
	JournalCreated = "journal.created"
	ReviewCreated  = "review.created"
)

// ReservationRequestedEvent is published when a member books a petsitter.
type ReservationRequestedEvent struct {
	ReservationID uuid.UUID   `json:"reservation_id"`
	MemberID      uuid.UUID   `json:"member_id"`
	PetsitterID   uuid.UUID   `json:"petsitter_id"`
	StartAt       time.Time   `json:"start_at"`
	EndAt         time.Time   `json:"end_at"`
	PetIDs        []uuid.UUID `json:"pet_ids"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// ReservationStatusChangedEvent is published for confirmations and
// cancellations.
type ReservationStatusChangedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	MemberID      uuid.UUID `json:"member_id"`
	PetsitterID   uuid.UUID `json:"petsitter_id"`
	ActorID       uuid.UUID `json:"actor_id"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PetPhotoOrphanedEvent reports a photo blob that could not be deleted and
// needs cleanup.
type PetPhotoOrphanedEvent struct {
	PetID      uuid.UUID `json:"pet_id"`
	PhotoRef   string    `json:"photo_ref"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// JournalCreatedEvent is consumed from the journal service.
type JournalCreatedEvent struct {
	JournalID     uuid.UUID `json:"journal_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReviewCreatedEvent is consumed from the review service.
type ReviewCreatedEvent struct {
	ReviewID      uuid.UUID `json:"review_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}
