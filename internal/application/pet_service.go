package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petmily/service-reservation/internal/blobstore"
	"github.com/petmily/service-reservation/internal/domain/member"
	petDomain "github.com/petmily/service-reservation/internal/domain/pet"
	"github.com/petmily/service-reservation/internal/events/schema"
)

// CreatePetRequest is the request DTO for registering a pet. It is bound
// from multipart form fields; the photo travels as a separate file part.
type CreatePetRequest struct {
	Name      string  `form:"name" json:"name" binding:"required"`
	Type      string  `form:"type" json:"type" binding:"required"`
	Species   string  `form:"species" json:"species"`
	Age       int     `form:"age" json:"age"`
	Weight    float64 `form:"weight" json:"weight"`
	Body      string  `form:"body" json:"body"`
	Neutering bool    `form:"neutering" json:"neutering"`
}

// UpdatePetRequest is the request DTO for a partial pet update. Nil fields
// are left unchanged.
type UpdatePetRequest struct {
	Name      *string  `form:"name" json:"name"`
	Species   *string  `form:"species" json:"species"`
	Age       *int     `form:"age" json:"age"`
	Weight    *float64 `form:"weight" json:"weight"`
	Body      *string  `form:"body" json:"body"`
	Neutering *bool    `form:"neutering" json:"neutering"`
}

func (r UpdatePetRequest) toPatch() petDomain.Patch {
	return petDomain.Patch{
		Name:      r.Name,
		Species:   r.Species,
		Age:       r.Age,
		Weight:    r.Weight,
		Body:      r.Body,
		Neutering: r.Neutering,
	}
}

// PetDTO is the API response representation of a pet.
type PetDTO struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Species   string    `json:"species,omitempty"`
	Age       int       `json:"age"`
	Weight    float64   `json:"weight"`
	Body      string    `json:"body,omitempty"`
	Neutering bool      `json:"neutering"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PetService implements use cases for pet profile management.
type PetService struct {
	repo          petDomain.PetRepository
	members       member.Directory
	blobs         blobstore.Store
	publisher     EventPublisher
	logger        *zap.Logger
	maxPhotoBytes int64
}

// NewPetService creates a new PetService.
func NewPetService(
	repo petDomain.PetRepository,
	members member.Directory,
	blobs blobstore.Store,
	publisher EventPublisher,
	logger *zap.Logger,
	maxPhotoBytes int64,
) *PetService {
	return &PetService{
		repo:          repo,
		members:       members,
		blobs:         blobs,
		publisher:     publisher,
		logger:        logger,
		maxPhotoBytes: maxPhotoBytes,
	}
}

// CreatePet registers a pet for an existing member. The optional photo is
// stored first and discarded again if the record cannot be saved.
func (s *PetService) CreatePet(ctx context.Context, ownerID uuid.UUID, req CreatePetRequest, photo *blobstore.Upload) (*PetDTO, error) {
	if _, err := s.members.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	pet, err := petDomain.NewPet(
		ownerID,
		req.Name,
		petDomain.PetType(req.Type),
		req.Species,
		req.Age,
		req.Weight,
		req.Body,
		req.Neutering,
	)
	if err != nil {
		return nil, err
	}

	var ref string
	if photo != nil {
		upload, err := blobstore.ValidateImage(*photo, s.maxPhotoBytes)
		if err != nil {
			return nil, err
		}
		ref, err = s.blobs.Put(ctx, upload)
		if err != nil {
			return nil, fmt.Errorf("failed to store pet photo: %w", err)
		}
		pet.ReplacePhoto(ref)
	}

	if err := s.repo.Save(ctx, pet); err != nil {
		s.logger.Error("failed to create pet", zap.Error(err))
		if ref != "" {
			s.discardBlob(ctx, pet.ID(), ref, "pet was not saved")
		}
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}

	s.logger.Info("pet created",
		zap.String("pet_id", pet.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	return s.toPetDTO(pet), nil
}

// UpdatePet applies a partial update on behalf of the owner. A new photo is
// stored before the record is written; the previous photo is deleted only
// after the update has committed.
func (s *PetService) UpdatePet(ctx context.Context, actorID, petID uuid.UUID, req UpdatePetRequest, photo *blobstore.Upload) (*PetDTO, error) {
	var upload blobstore.Upload
	if photo != nil {
		var err error
		if upload, err = blobstore.ValidateImage(*photo, s.maxPhotoBytes); err != nil {
			return nil, err
		}
	}

	patch := req.toPatch()
	var (
		updated *petDomain.Pet
		newRef  string
		oldRef  string
	)
	err := s.repo.Transaction(ctx, func(repo petDomain.PetRepository) error {
		pet, err := repo.FindByID(ctx, petID)
		if err != nil {
			return err
		}
		if err := pet.CheckOwner(actorID); err != nil {
			return err
		}
		if patch.IsEmpty() && photo == nil {
			updated = pet
			return nil
		}
		if err := pet.Apply(patch); err != nil {
			return err
		}

		if photo != nil {
			ref, err := s.blobs.Put(ctx, upload)
			if err != nil {
				return fmt.Errorf("failed to store pet photo: %w", err)
			}
			newRef = ref
			oldRef = pet.ReplacePhoto(ref)
		}

		pet.IncrementVersion()
		if err := repo.Update(ctx, pet); err != nil {
			return err
		}
		updated = pet
		return nil
	})
	if err != nil {
		if newRef != "" {
			s.discardBlob(ctx, petID, newRef, "pet update rolled back")
		}
		return nil, err
	}

	if oldRef != "" {
		s.discardBlob(ctx, petID, oldRef, "pet photo replaced")
	}

	s.logger.Info("pet updated", zap.String("pet_id", petID.String()))
	return s.toPetDTO(updated), nil
}

// DeletePhoto clears a pet's photo and deletes the blob after commit.
func (s *PetService) DeletePhoto(ctx context.Context, actorID, petID uuid.UUID) (*PetDTO, error) {
	var (
		updated *petDomain.Pet
		oldRef  string
	)
	err := s.repo.Transaction(ctx, func(repo petDomain.PetRepository) error {
		pet, err := repo.FindByID(ctx, petID)
		if err != nil {
			return err
		}
		if err := pet.CheckOwner(actorID); err != nil {
			return err
		}
		ref, err := pet.RemovePhoto()
		if err != nil {
			return err
		}
		pet.IncrementVersion()
		if err := repo.Update(ctx, pet); err != nil {
			return err
		}
		updated, oldRef = pet, ref
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.discardBlob(ctx, petID, oldRef, "pet photo removed")
	s.logger.Info("pet photo removed", zap.String("pet_id", petID.String()))
	return s.toPetDTO(updated), nil
}

// DeletePet removes a pet on behalf of its owner, then its photo.
func (s *PetService) DeletePet(ctx context.Context, actorID, petID uuid.UUID) error {
	var photoRef string
	err := s.repo.Transaction(ctx, func(repo petDomain.PetRepository) error {
		pet, err := repo.FindByID(ctx, petID)
		if err != nil {
			return err
		}
		if err := pet.CheckOwner(actorID); err != nil {
			return err
		}
		photoRef = pet.Photo()
		return repo.Delete(ctx, petID)
	})
	if err != nil {
		return err
	}

	if photoRef != "" {
		s.discardBlob(ctx, petID, photoRef, "pet deleted")
	}
	s.logger.Info("pet deleted", zap.String("pet_id", petID.String()))
	return nil
}

// GetPet returns a single pet. Pet profiles are visible to any
// authenticated user so petsitters can see who they are caring for.
func (s *PetService) GetPet(ctx context.Context, petID uuid.UUID) (*PetDTO, error) {
	pet, err := s.repo.FindByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	return s.toPetDTO(pet), nil
}

// GetMemberPets returns every pet owned by an existing member.
func (s *PetService) GetMemberPets(ctx context.Context, memberID uuid.UUID) ([]PetDTO, error) {
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, err
	}
	pets, err := s.repo.FindByOwnerID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pets: %w", err)
	}
	dtos := make([]PetDTO, len(pets))
	for i, p := range pets {
		dtos[i] = *s.toPetDTO(p)
	}
	return dtos, nil
}

// discardBlob deletes a blob that is no longer referenced. A failure is
// logged and published for cleanup, never returned.
func (s *PetService) discardBlob(ctx context.Context, petID uuid.UUID, ref, reason string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.blobs.Delete(ctx, ref); err != nil {
		s.logger.Warn("failed to delete pet photo",
			zap.String("pet_id", petID.String()),
			zap.String("photo_ref", ref),
			zap.String("reason", reason),
			zap.Error(err),
		)
		evt := schema.PetPhotoOrphanedEvent{
			PetID:      petID,
			PhotoRef:   ref,
			Reason:     reason,
			OccurredAt: time.Now().UTC(),
		}
		publishEvent(ctx, s.publisher, s.logger, schema.TopicPetEvents, schema.PetPhotoOrphaned, petID.String(), evt)
	}
}

func (s *PetService) toPetDTO(p *petDomain.Pet) *PetDTO {
	return &PetDTO{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Name:      p.Name(),
		Type:      string(p.PetType()),
		Species:   p.Species(),
		Age:       p.Age(),
		Weight:    p.Weight(),
		Body:      p.Body(),
		Neutering: p.Neutering(),
		PhotoURL:  s.blobs.URL(p.Photo()),
		Version:   p.Version(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}
