package pet

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petmily/service-reservation/internal/platform/domain"
)

// PetType is the kind of animal.
type PetType string

const (
	PetTypeCat PetType = "CAT"
	PetTypeDog PetType = "DOG"
)

// IsValid returns true if the pet type is recognized.
func (t PetType) IsValid() bool {
	return t == PetTypeCat || t == PetTypeDog
}

// Pet is the aggregate root for a member's pet profile.
type Pet struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	name      string
	petType   PetType
	species   string
	age       int
	weight    float64
	body      string
	neutering bool
	photo     string
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewPet creates a pet profile with validated fields. The photo is attached
// separately once it has been stored.
func NewPet(
	ownerID uuid.UUID,
	name string,
	petType PetType,
	species string,
	age int,
	weight float64,
	body string,
	neutering bool,
) (*Pet, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("pet name is required")
	}
	if !petType.IsValid() {
		return nil, domain.NewValidationError("invalid pet type: " + string(petType))
	}
	if err := validateMeasurements(age, weight); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Pet{
		id:        uuid.New(),
		ownerID:   ownerID,
		name:      name,
		petType:   petType,
		species:   strings.TrimSpace(species),
		age:       age,
		weight:    weight,
		body:      strings.TrimSpace(body),
		neutering: neutering,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Pet from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name string,
	petType PetType,
	species string,
	age int,
	weight float64,
	body string,
	neutering bool,
	photo string,
	version int64,
	createdAt, updatedAt time.Time,
) *Pet {
	return &Pet{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		petType:   petType,
		species:   species,
		age:       age,
		weight:    weight,
		body:      body,
		neutering: neutering,
		photo:     photo,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (p *Pet) ID() uuid.UUID        { return p.id }
func (p *Pet) OwnerID() uuid.UUID   { return p.ownerID }
func (p *Pet) Name() string         { return p.name }
func (p *Pet) PetType() PetType     { return p.petType }
func (p *Pet) Species() string      { return p.species }
func (p *Pet) Age() int             { return p.age }
func (p *Pet) Weight() float64      { return p.weight }
func (p *Pet) Body() string         { return p.body }
func (p *Pet) Neutering() bool      { return p.neutering }
func (p *Pet) Photo() string        { return p.photo }
func (p *Pet) HasPhoto() bool       { return p.photo != "" }
func (p *Pet) Version() int64       { return p.version }
func (p *Pet) CreatedAt() time.Time { return p.createdAt }
func (p *Pet) UpdatedAt() time.Time { return p.updatedAt }

// --- Behavior ---

// CheckOwner fails with Forbidden unless actorID owns the pet.
func (p *Pet) CheckOwner(actorID uuid.UUID) error {
	return domain.RequireOwner("pet", p.ownerID, actorID)
}

// Apply copies every present field of patch onto the pet. The patch is
// validated as a whole first, so a rejected patch leaves the pet untouched.
func (p *Pet) Apply(patch Patch) error {
	if patch.Neutering != nil {
		switch {
		case p.neutering:
			return domain.NewStateError("pet is already neutered")
		case !*patch.Neutering:
			return domain.NewStateError("neutering can only be set, not cleared")
		}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.NewValidationError("pet name cannot be blank")
	}
	age, weight := p.age, p.weight
	if patch.Age != nil {
		age = *patch.Age
	}
	if patch.Weight != nil {
		weight = *patch.Weight
	}
	if err := validateMeasurements(age, weight); err != nil {
		return err
	}

	if patch.Name != nil {
		p.name = strings.TrimSpace(*patch.Name)
	}
	if patch.Species != nil {
		p.species = strings.TrimSpace(*patch.Species)
	}
	if patch.Body != nil {
		p.body = strings.TrimSpace(*patch.Body)
	}
	if patch.Neutering != nil {
		p.neutering = true
	}
	p.age = age
	p.weight = weight
	p.updatedAt = time.Now().UTC()
	return nil
}

// ReplacePhoto attaches a stored photo reference and returns the previous
// one, which is empty when the pet had no photo.
func (p *Pet) ReplacePhoto(ref string) string {
	previous := p.photo
	p.photo = ref
	p.updatedAt = time.Now().UTC()
	return previous
}

// RemovePhoto clears the photo reference and returns it.
func (p *Pet) RemovePhoto() (string, error) {
	if p.photo == "" {
		return "", domain.NewNotFoundError("Pet photo", p.id.String())
	}
	previous := p.photo
	p.photo = ""
	p.updatedAt = time.Now().UTC()
	return previous, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Pet) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}

func validateMeasurements(age int, weight float64) error {
	if age < 0 {
		return domain.NewValidationError("pet age cannot be negative")
	}
	if weight < 0 {
		return domain.NewValidationError("pet weight cannot be negative")
	}
	return nil
}
