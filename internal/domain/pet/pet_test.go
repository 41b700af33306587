package pet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petmily/service-reservation/internal/platform/domain"
)

func ptr[T any](v T) *T { return &v }

func newTestPet(t *testing.T, neutering bool) *Pet {
	t.Helper()
	p, err := NewPet(uuid.New(), "Choco", PetTypeDog, "poodle", 3, 4.2, "small", neutering)
	require.NoError(t, err)
	return p
}

func TestNewPetValidation(t *testing.T) {
	owner := uuid.New()

	_, err := NewPet(uuid.Nil, "Choco", PetTypeDog, "", 1, 1, "", false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewPet(owner, "  ", PetTypeDog, "", 1, 1, "", false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewPet(owner, "Choco", PetType("HAMSTER"), "", 1, 1, "", false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewPet(owner, "Choco", PetTypeCat, "", -1, 1, "", false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	p, err := NewPet(owner, " Choco ", PetTypeCat, "korean shorthair", 0, 0, "", false)
	require.NoError(t, err)
	assert.Equal(t, "Choco", p.Name())
	assert.Equal(t, int64(1), p.Version())
	assert.False(t, p.HasPhoto())
}

func TestApplyOnlyPresentFields(t *testing.T) {
	p := newTestPet(t, false)

	require.NoError(t, p.Apply(Patch{Age: ptr(0), Body: ptr("medium")}))

	assert.Equal(t, "Choco", p.Name())
	assert.Equal(t, 0, p.Age())
	assert.Equal(t, 4.2, p.Weight())
	assert.Equal(t, "medium", p.Body())
	assert.False(t, p.Neutering())
}

func TestNeuteringIsOneWay(t *testing.T) {
	tests := []struct {
		name    string
		stored  bool
		patch   bool
		wantErr bool
	}{
		{name: "false to true", stored: false, patch: true, wantErr: false},
		{name: "true to true", stored: true, patch: true, wantErr: true},
		{name: "true to false", stored: true, patch: false, wantErr: true},
		{name: "false to false", stored: false, patch: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPet(t, tt.stored)

			err := p.Apply(Patch{Neutering: ptr(tt.patch)})

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidState)
				assert.Equal(t, tt.stored, p.Neutering())
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Neutering())
		})
	}
}

func TestRejectedPatchLeavesPetUntouched(t *testing.T) {
	p := newTestPet(t, true)

	err := p.Apply(Patch{Name: ptr("Latte"), Neutering: ptr(true)})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, "Choco", p.Name())

	err = p.Apply(Patch{Name: ptr("Latte"), Weight: ptr(-1.0)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Choco", p.Name())
}

func TestCheckOwner(t *testing.T) {
	p := newTestPet(t, false)

	assert.NoError(t, p.CheckOwner(p.OwnerID()))
	assert.ErrorIs(t, p.CheckOwner(uuid.New()), domain.ErrForbidden)
}

func TestPhotoLifecycle(t *testing.T) {
	p := newTestPet(t, false)

	_, err := p.RemovePhoto()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, "", p.ReplacePhoto("pets/a.jpg"))
	assert.Equal(t, "pets/a.jpg", p.ReplacePhoto("pets/b.jpg"))

	removed, err := p.RemovePhoto()
	require.NoError(t, err)
	assert.Equal(t, "pets/b.jpg", removed)
	assert.False(t, p.HasPhoto())
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{Neutering: ptr(false)}.IsEmpty())
}
