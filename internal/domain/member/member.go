package member

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is a member's marketplace role.
type Role string

const (
	RoleMember    Role = "MEMBER"
	RolePetsitter Role = "PETSITTER"
	RoleAdmin     Role = "ADMIN"
)

// Member is a read-only view of an account owned by the account service.
// Pets and reservations refer to members by id only.
type Member struct {
	ID        uuid.UUID
	Name      string
	Nickname  string
	Role      Role
	CreatedAt time.Time
}

// IsPetsitter reports whether the member can be booked.
func (m *Member) IsPetsitter() bool {
	return m.Role == RolePetsitter
}

// Directory resolves members by id.
type Directory interface {
	// FindByID returns the member or a NotFound error.
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// ListPetsitters returns every member with the petsitter role.
	ListPetsitters(ctx context.Context) ([]*Member, error)
}
