package pet

import (
	"context"

	"github.com/google/uuid"
)

// PetRepository defines persistence operations for pet profiles.
type PetRepository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction; fn's error rolls it back.
	Transaction(ctx context.Context, fn func(repo PetRepository) error) error

	FindByID(ctx context.Context, id uuid.UUID) (*Pet, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Pet, error)
	Save(ctx context.Context, pet *Pet) error

	// Update persists changes with optimistic locking against Version()-1.
	Update(ctx context.Context, pet *Pet) error
	Delete(ctx context.Context, id uuid.UUID) error
}
