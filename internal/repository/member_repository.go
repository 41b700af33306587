package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petmily/service-reservation/internal/domain/member"
	"github.com/petmily/service-reservation/internal/platform/domain"
)

// MemberModel is the GORM model for the members table. Rows are written by
// the account service; this service only reads and row-locks them.
type MemberModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Nickname  string    `gorm:"type:varchar(100)"`
	Role      string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (MemberModel) TableName() string { return "members" }

// GormMemberDirectory implements member.Directory using GORM.
type GormMemberDirectory struct {
	db *gorm.DB
}

func NewGormMemberDirectory(db *gorm.DB) *GormMemberDirectory {
	return &GormMemberDirectory{db: db}
}

func (r *GormMemberDirectory) FindByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	var model MemberModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Member", id.String())
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return toMemberDomain(&model), nil
}

func (r *GormMemberDirectory) ListPetsitters(ctx context.Context) ([]*member.Member, error) {
	var models []MemberModel
	if err := r.db.WithContext(ctx).
		Where("role = ?", string(member.RolePetsitter)).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list petsitters: %w", err)
	}
	members := make([]*member.Member, len(models))
	for i := range models {
		members[i] = toMemberDomain(&models[i])
	}
	return members, nil
}

func toMemberDomain(m *MemberModel) *member.Member {
	return &member.Member{
		ID:        m.ID,
		Name:      m.Name,
		Nickname:  m.Nickname,
		Role:      member.Role(m.Role),
		CreatedAt: m.CreatedAt,
	}
}
