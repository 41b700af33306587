package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petmily/service-reservation/internal/domain/member"
	petDomain "github.com/petmily/service-reservation/internal/domain/pet"
	resDomain "github.com/petmily/service-reservation/internal/domain/reservation"
	"github.com/petmily/service-reservation/internal/events/schema"
	"github.com/petmily/service-reservation/internal/platform/domain"
)

// CreateReservationRequest holds the data needed to book a petsitter.
type CreateReservationRequest struct {
	PetsitterID uuid.UUID   `json:"petsitter_id" binding:"required"`
	StartAt     time.Time   `json:"start_at" binding:"required"`
	EndAt       time.Time   `json:"end_at" binding:"required"`
	Address     string      `json:"address" binding:"required"`
	Body        string      `json:"body"`
	PetIDs      []uuid.UUID `json:"pet_ids" binding:"required,min=1"`
}

// FindPetsittersRequest is the window a member wants covered.
type FindPetsittersRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}

// PetsitterDTO is a petsitter available for booking.
type PetsitterDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Nickname string    `json:"nickname,omitempty"`
}

// ReservationDTO is the response representation of a reservation.
type ReservationDTO struct {
	ID          uuid.UUID   `json:"id"`
	MemberID    uuid.UUID   `json:"member_id"`
	PetsitterID uuid.UUID   `json:"petsitter_id"`
	StartAt     time.Time   `json:"start_at"`
	EndAt       time.Time   `json:"end_at"`
	Address     string      `json:"address"`
	Body        string      `json:"body,omitempty"`
	PetIDs      []uuid.UUID `json:"pet_ids"`
	Status      string      `json:"status"`
	JournalID   *uuid.UUID  `json:"journal_id,omitempty"`
	ReviewID    *uuid.UUID  `json:"review_id,omitempty"`
	ConfirmedAt *time.Time  `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time  `json:"cancelled_at,omitempty"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ReservationService is the application service orchestrating reservation
// use cases.
type ReservationService struct {
	repo      resDomain.ReservationRepository
	pets      petDomain.PetRepository
	members   member.Directory
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	repo resDomain.ReservationRepository,
	pets petDomain.PetRepository,
	members member.Directory,
	publisher EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		repo:      repo,
		pets:      pets,
		members:   members,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateReservation books a petsitter for the member's pets. The petsitter's
// calendar is locked for the duration of the overlap check and insert.
func (s *ReservationService) CreateReservation(ctx context.Context, memberID uuid.UUID, req CreateReservationRequest) (*ReservationDTO, error) {
	period, err := resDomain.NewTimeRange(req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}

	petsitter, err := s.members.FindByID(ctx, req.PetsitterID)
	if err != nil {
		return nil, err
	}
	if !petsitter.IsPetsitter() {
		return nil, domain.NewValidationError(fmt.Sprintf("member %s is not a petsitter", req.PetsitterID))
	}

	for _, petID := range req.PetIDs {
		p, err := s.pets.FindByID(ctx, petID)
		if err != nil {
			return nil, err
		}
		if err := p.CheckOwner(memberID); err != nil {
			return nil, err
		}
	}

	r, err := resDomain.NewReservation(memberID, req.PetsitterID, period, req.Address, req.Body, req.PetIDs, s.now())
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(repo resDomain.ReservationRepository) error {
		if err := repo.LockPetsitter(ctx, req.PetsitterID); err != nil {
			return err
		}
		overlapping, err := repo.FindActiveOverlapping(ctx, &req.PetsitterID, period)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return domain.NewConflictError("petsitter is already booked for this time")
		}
		return repo.Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation requested",
		zap.String("reservation_id", r.ID().String()),
		zap.String("member_id", memberID.String()),
		zap.String("petsitter_id", req.PetsitterID.String()),
	)

	evt := schema.ReservationRequestedEvent{
		ReservationID: r.ID(),
		MemberID:      memberID,
		PetsitterID:   r.PetsitterID(),
		StartAt:       r.Period().Start,
		EndAt:         r.Period().End,
		PetIDs:        r.PetIDs(),
		OccurredAt:    s.now(),
	}
	publishEvent(ctx, s.publisher, s.logger, schema.TopicReservationEvents, schema.ReservationRequested, r.ID().String(), evt)

	return toReservationDTO(r), nil
}

// FindPossiblePetsitters returns petsitters with no active reservation
// overlapping the requested window.
func (s *ReservationService) FindPossiblePetsitters(ctx context.Context, req FindPetsittersRequest) ([]PetsitterDTO, error) {
	period, err := resDomain.NewTimeRange(req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}

	petsitters, err := s.members.ListPetsitters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list petsitters: %w", err)
	}
	busy, err := s.repo.FindActiveOverlapping(ctx, nil, period)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations: %w", err)
	}

	booked := make(map[uuid.UUID]struct{}, len(busy))
	for _, r := range busy {
		booked[r.PetsitterID()] = struct{}{}
	}

	available := make([]PetsitterDTO, 0, len(petsitters))
	for _, p := range petsitters {
		if _, ok := booked[p.ID]; ok {
			continue
		}
		available = append(available, PetsitterDTO{ID: p.ID, Name: p.Name, Nickname: p.Nickname})
	}
	return available, nil
}

// ConfirmReservation accepts a requested reservation on behalf of its
// petsitter.
func (s *ReservationService) ConfirmReservation(ctx context.Context, reservationID, actorID uuid.UUID) (*ReservationDTO, error) {
	return s.changeStatus(ctx, reservationID, actorID, schema.ReservationConfirmed, func(r *resDomain.Reservation, now time.Time) error {
		return r.Confirm(actorID, now)
	})
}

// CancelByPetsitter cancels a reservation on behalf of its petsitter.
func (s *ReservationService) CancelByPetsitter(ctx context.Context, reservationID, actorID uuid.UUID) (*ReservationDTO, error) {
	return s.changeStatus(ctx, reservationID, actorID, schema.ReservationCancelledByPetsitter, func(r *resDomain.Reservation, now time.Time) error {
		return r.CancelByPetsitter(actorID, now)
	})
}

// CancelByMember cancels a reservation on behalf of the member who made it.
func (s *ReservationService) CancelByMember(ctx context.Context, reservationID, actorID uuid.UUID) (*ReservationDTO, error) {
	return s.changeStatus(ctx, reservationID, actorID, schema.ReservationCancelledByMember, func(r *resDomain.Reservation, now time.Time) error {
		return r.CancelByMember(actorID, now)
	})
}

// changeStatus loads a reservation, applies a transition and writes it back
// under optimistic locking, then publishes eventType.
func (s *ReservationService) changeStatus(
	ctx context.Context,
	reservationID, actorID uuid.UUID,
	eventType string,
	apply func(r *resDomain.Reservation, now time.Time) error,
) (*ReservationDTO, error) {
	var (
		updated *resDomain.Reservation
		from    resDomain.Status
	)
	err := s.repo.Transaction(ctx, func(repo resDomain.ReservationRepository) error {
		r, err := repo.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		from = r.Status()
		if err := apply(r, s.now()); err != nil {
			return err
		}
		r.IncrementVersion()
		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation status changed",
		zap.String("reservation_id", reservationID.String()),
		zap.String("from", from.String()),
		zap.String("to", updated.Status().String()),
	)

	evt := schema.ReservationStatusChangedEvent{
		ReservationID: updated.ID(),
		MemberID:      updated.MemberID(),
		PetsitterID:   updated.PetsitterID(),
		ActorID:       actorID,
		FromStatus:    from.String(),
		ToStatus:      updated.Status().String(),
		OccurredAt:    s.now(),
	}
	publishEvent(ctx, s.publisher, s.logger, schema.TopicReservationEvents, eventType, updated.ID().String(), evt)

	return toReservationDTO(updated), nil
}

// GetReservation returns a single reservation with its journal and review
// links.
func (s *ReservationService) GetReservation(ctx context.Context, reservationID uuid.UUID) (*ReservationDTO, error) {
	r, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return toReservationDTO(r), nil
}

// GetMemberReservations returns a member's reservation history filtered by
// condition.
func (s *ReservationService) GetMemberReservations(ctx context.Context, memberID uuid.UUID, condition string, page, limit int) (*domain.PaginatedResult[ReservationDTO], error) {
	filter, err := resDomain.FilterForCondition(condition, s.now())
	if err != nil {
		return nil, err
	}
	reservations, total, err := s.repo.FindByMemberID(ctx, memberID, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get member reservations: %w", err)
	}
	result := domain.NewPaginatedResult(toReservationDTOs(reservations), total, page, limit)
	return &result, nil
}

// GetPetsitterReservations returns a petsitter's reservation history
// filtered by condition.
func (s *ReservationService) GetPetsitterReservations(ctx context.Context, petsitterID uuid.UUID, condition string, page, limit int) (*domain.PaginatedResult[ReservationDTO], error) {
	filter, err := resDomain.FilterForCondition(condition, s.now())
	if err != nil {
		return nil, err
	}
	reservations, total, err := s.repo.FindByPetsitterID(ctx, petsitterID, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get petsitter reservations: %w", err)
	}
	result := domain.NewPaginatedResult(toReservationDTOs(reservations), total, page, limit)
	return &result, nil
}

// GetPetsitterSchedule returns the petsitter's active reservations that
// have not yet ended, earliest first.
func (s *ReservationService) GetPetsitterSchedule(ctx context.Context, petsitterID uuid.UUID) ([]ReservationDTO, error) {
	petsitter, err := s.members.FindByID(ctx, petsitterID)
	if err != nil {
		return nil, err
	}
	if !petsitter.IsPetsitter() {
		return nil, domain.NewValidationError(fmt.Sprintf("member %s is not a petsitter", petsitterID))
	}

	reservations, err := s.repo.FindSchedule(ctx, petsitterID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get petsitter schedule: %w", err)
	}
	return toReservationDTOs(reservations), nil
}

// AttachJournal links a care journal to its reservation.
func (s *ReservationService) AttachJournal(ctx context.Context, reservationID, journalID uuid.UUID) error {
	return s.attach(ctx, reservationID, "journal_id", journalID, func(r *resDomain.Reservation, now time.Time) (bool, error) {
		return r.AttachJournal(journalID, now)
	})
}

// AttachReview links a member review to its reservation.
func (s *ReservationService) AttachReview(ctx context.Context, reservationID, reviewID uuid.UUID) error {
	return s.attach(ctx, reservationID, "review_id", reviewID, func(r *resDomain.Reservation, now time.Time) (bool, error) {
		return r.AttachReview(reviewID, now)
	})
}

func (s *ReservationService) attach(
	ctx context.Context,
	reservationID uuid.UUID,
	field string,
	linkedID uuid.UUID,
	apply func(r *resDomain.Reservation, now time.Time) (bool, error),
) error {
	changed := false
	err := s.repo.Transaction(ctx, func(repo resDomain.ReservationRepository) error {
		r, err := repo.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if changed, err = apply(r, s.now()); err != nil || !changed {
			return err
		}
		r.IncrementVersion()
		return repo.Update(ctx, r)
	})
	if err != nil {
		return err
	}

	if changed {
		s.logger.Info("reservation linked",
			zap.String("reservation_id", reservationID.String()),
			zap.String(field, linkedID.String()),
		)
	}
	return nil
}

// --- Admin methods ---

// ReservationStatsDTO holds reservation statistics for the admin dashboard.
type ReservationStatsDTO struct {
	TotalReservations int64            `json:"total_reservations"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// ListAllReservations returns a paginated list of all reservations (admin).
func (s *ReservationService) ListAllReservations(ctx context.Context, page, limit int) ([]ReservationDTO, int64, error) {
	reservations, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toReservationDTOs(reservations), total, nil
}

// GetReservationStats returns aggregate reservation statistics (admin).
func (s *ReservationService) GetReservationStats(ctx context.Context) (*ReservationStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &ReservationStatsDTO{
		TotalReservations: total,
		ByStatus:          counts,
	}, nil
}

// --- Helpers ---

func toReservationDTO(r *resDomain.Reservation) *ReservationDTO {
	return &ReservationDTO{
		ID:          r.ID(),
		MemberID:    r.MemberID(),
		PetsitterID: r.PetsitterID(),
		StartAt:     r.Period().Start,
		EndAt:       r.Period().End,
		Address:     r.Address(),
		Body:        r.Body(),
		PetIDs:      r.PetIDs(),
		Status:      r.Status().String(),
		JournalID:   r.JournalID(),
		ReviewID:    r.ReviewID(),
		ConfirmedAt: r.ConfirmedAt(),
		CancelledAt: r.CancelledAt(),
		Version:     r.Version(),
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}
}

func toReservationDTOs(reservations []*resDomain.Reservation) []ReservationDTO {
	dtos := make([]ReservationDTO, len(reservations))
	for i, r := range reservations {
		dtos[i] = *toReservationDTO(r)
	}
	return dtos
}
