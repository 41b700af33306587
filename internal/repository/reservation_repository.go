package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	resDomain "github.com/petmily/service-reservation/internal/domain/reservation"
	"github.com/petmily/service-reservation/internal/platform/domain"
)

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MemberID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	PetsitterID uuid.UUID       `gorm:"type:uuid;index;not null"`
	StartAt     time.Time       `gorm:"type:timestamptz;not null"`
	EndAt       time.Time       `gorm:"type:timestamptz;not null"`
	Address     string          `gorm:"size:500;not null"`
	Body        string          `gorm:"size:1000"`
	PetIDs      json.RawMessage `gorm:"type:jsonb;not null"`
	Status      string          `gorm:"not null;size:30;index"`
	JournalID   *uuid.UUID      `gorm:"type:uuid"`
	ReviewID    *uuid.UUID      `gorm:"type:uuid"`
	ConfirmedAt *time.Time      `gorm:"type:timestamptz"`
	CancelledAt *time.Time      `gorm:"type:timestamptz"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReservationModel) TableName() string {
	return "reservations"
}

// GormReservationRepository is the GORM-based implementation of
// ReservationRepository.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *GormReservationRepository) Transaction(ctx context.Context, fn func(repo resDomain.ReservationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormReservationRepository{db: tx})
	})
}

// LockPetsitter takes a row lock on the petsitter's member row. Concurrent
// bookings of the same petsitter queue behind it until commit.
func (r *GormReservationRepository) LockPetsitter(ctx context.Context, petsitterID uuid.UUID) error {
	var model MemberModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", petsitterID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("Petsitter", petsitterID.String())
		}
		return fmt.Errorf("failed to lock petsitter: %w", err)
	}
	return nil
}

// FindByID retrieves a reservation by its unique identifier.
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*resDomain.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", id.String())
		}
		return nil, fmt.Errorf("failed to find reservation by ID: %w", err)
	}
	return toDomainReservation(&model)
}

// FindByMemberID retrieves a member's reservations with pagination.
func (r *GormReservationRepository) FindByMemberID(ctx context.Context, memberID uuid.UUID, filter resDomain.Filter, page, limit int) ([]*resDomain.Reservation, int64, error) {
	return r.findPage(ctx, "member_id = ?", memberID, filter, page, limit)
}

// FindByPetsitterID retrieves a petsitter's reservations with pagination.
func (r *GormReservationRepository) FindByPetsitterID(ctx context.Context, petsitterID uuid.UUID, filter resDomain.Filter, page, limit int) ([]*resDomain.Reservation, int64, error) {
	return r.findPage(ctx, "petsitter_id = ?", petsitterID, filter, page, limit)
}

func (r *GormReservationRepository) findPage(ctx context.Context, owner string, ownerID uuid.UUID, filter resDomain.Filter, page, limit int) ([]*resDomain.Reservation, int64, error) {
	base := func() *gorm.DB {
		return applyFilter(r.db.WithContext(ctx).Model(&ReservationModel{}).Where(owner, ownerID), filter)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := base().
		Order("start_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find reservations: %w", err)
	}

	reservations, err := toDomainReservations(models)
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// FindActiveOverlapping returns non-cancelled reservations overlapping
// window. A nil petsitterID searches across all petsitters.
func (r *GormReservationRepository) FindActiveOverlapping(ctx context.Context, petsitterID *uuid.UUID, window resDomain.TimeRange) ([]*resDomain.Reservation, error) {
	q := r.db.WithContext(ctx).
		Where("status IN ?", statusStrings(resDomain.ActiveStatuses)).
		Where("start_at < ? AND end_at > ?", window.End, window.Start)
	if petsitterID != nil {
		q = q.Where("petsitter_id = ?", *petsitterID)
	}

	var models []ReservationModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations: %w", err)
	}
	return toDomainReservations(models)
}

// FindSchedule returns a petsitter's non-cancelled reservations that have
// not ended by from, ordered by start time.
func (r *GormReservationRepository) FindSchedule(ctx context.Context, petsitterID uuid.UUID, from time.Time) ([]*resDomain.Reservation, error) {
	var models []ReservationModel
	if err := r.db.WithContext(ctx).
		Where("petsitter_id = ?", petsitterID).
		Where("status IN ?", statusStrings(resDomain.ActiveStatuses)).
		Where("end_at > ?", from).
		Order("start_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find petsitter schedule: %w", err)
	}
	return toDomainReservations(models)
}

// ListAll retrieves all reservations with pagination (admin).
func (r *GormReservationRepository) ListAll(ctx context.Context, page, limit int) ([]*resDomain.Reservation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	reservations, err := toDomainReservations(models)
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// CountByStatus returns reservation counts grouped by status (admin).
func (r *GormReservationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64, len(results))
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new reservation.
func (r *GormReservationRepository) Save(ctx context.Context, res *resDomain.Reservation) error {
	model, err := toReservationModel(res)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// Update persists changes to an existing reservation with optimistic locking.
func (r *GormReservationRepository) Update(ctx context.Context, res *resDomain.Reservation) error {
	model, err := toReservationModel(res)
	if err != nil {
		return err
	}

	expectedVersion := res.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"journal_id":   model.JournalID,
			"review_id":    model.ReviewID,
			"confirmed_at": model.ConfirmedAt,
			"cancelled_at": model.CancelledAt,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("reservation was modified by another transaction")
	}
	return nil
}

// --- Query Helpers ---

func applyFilter(q *gorm.DB, f resDomain.Filter) *gorm.DB {
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(f.Statuses))
	}
	if f.StartsAfter != nil {
		q = q.Where("start_at > ?", *f.StartsAfter)
	}
	if f.EndsBefore != nil {
		q = q.Where("end_at < ?", *f.EndsBefore)
	}
	return q
}

func statusStrings(statuses []resDomain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

// --- Conversion Helpers ---

func toReservationModel(res *resDomain.Reservation) (*ReservationModel, error) {
	petIDs, err := json.Marshal(res.PetIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pet IDs: %w", err)
	}

	return &ReservationModel{
		ID:          res.ID(),
		MemberID:    res.MemberID(),
		PetsitterID: res.PetsitterID(),
		StartAt:     res.Period().Start,
		EndAt:       res.Period().End,
		Address:     res.Address(),
		Body:        res.Body(),
		PetIDs:      petIDs,
		Status:      res.Status().String(),
		JournalID:   res.JournalID(),
		ReviewID:    res.ReviewID(),
		ConfirmedAt: res.ConfirmedAt(),
		CancelledAt: res.CancelledAt(),
		Version:     res.Version(),
		CreatedAt:   res.CreatedAt(),
		UpdatedAt:   res.UpdatedAt(),
	}, nil
}

func toDomainReservation(m *ReservationModel) (*resDomain.Reservation, error) {
	var petIDs []uuid.UUID
	if len(m.PetIDs) > 0 {
		if err := json.Unmarshal(m.PetIDs, &petIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pet IDs: %w", err)
		}
	}

	status, err := resDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return resDomain.Reconstruct(
		m.ID,
		m.MemberID,
		m.PetsitterID,
		resDomain.TimeRange{Start: m.StartAt.UTC(), End: m.EndAt.UTC()},
		m.Address,
		m.Body,
		petIDs,
		status,
		m.JournalID,
		m.ReviewID,
		m.ConfirmedAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainReservations(models []ReservationModel) ([]*resDomain.Reservation, error) {
	reservations := make([]*resDomain.Reservation, len(models))
	for i := range models {
		res, err := toDomainReservation(&models[i])
		if err != nil {
			return nil, err
		}
		reservations[i] = res
	}
	return reservations, nil
}
