package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() *PetReport {
	return &PetReport{
		Kind:         ReportKindMissing,
		Name:         "Rex",
		Species:      "Dog",
		OwnerEmail:   "Owner@Example.com",
		OwnerPhone:   " 600111222 ",
		Locality:     " Madrid ",
		PostalCode:   " 28001 ",
		Color:        "Brown",
		Sex:          PetSexMale,
		Size:         PetSizeMedium,
		RegisteredOn: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeLowersIdentityFields(t *testing.T) {
	r := validReport()
	r.Normalize()

	assert.Equal(t, "rex", r.Name)
	assert.Equal(t, "dog", r.Species)
	assert.Equal(t, "owner@example.com", r.OwnerEmail)
	assert.Equal(t, "600111222", r.OwnerPhone)
	assert.Equal(t, "madrid", r.Locality)
	assert.Equal(t, "28001", r.PostalCode)
	assert.Equal(t, "brown", r.Color)
}

func TestNormalizeCollapsesEmptyOptionals(t *testing.T) {
	empty := "   "
	breed := " Labrador "
	r := validReport()
	r.Breed = &breed
	r.MicrochipID = &empty
	r.Description = &empty

	r.Normalize()

	require.NotNil(t, r.Breed)
	assert.Equal(t, "Labrador", *r.Breed)
	assert.Nil(t, r.MicrochipID)
	assert.Nil(t, r.Description)
}

func TestBeforeSaveRejectsInvalidEnums(t *testing.T) {
	r := validReport()
	r.Sex = PetSex("sometimes")
	assert.ErrorIs(t, r.BeforeSave(nil), ErrInvalidEnumValue)

	r = validReport()
	r.Kind = ReportKind("lost")
	assert.ErrorIs(t, r.BeforeSave(nil), ErrInvalidEnumValue)

	r = validReport()
	r.Size = PetSize("huge")
	assert.ErrorIs(t, r.BeforeSave(nil), ErrInvalidEnumValue)
}

func TestBeforeSaveResolutionPairing(t *testing.T) {
	on := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	status := ResolutionAlive

	r := validReport()
	r.ResolvedOn = &on
	assert.ErrorIs(t, r.BeforeSave(nil), ErrResolutionFieldsMismatch)

	r = validReport()
	r.ResolutionStatus = &status
	assert.ErrorIs(t, r.BeforeSave(nil), ErrResolutionFieldsMismatch)

	r = validReport()
	r.ResolvedOn = &on
	r.ResolutionStatus = &status
	assert.NoError(t, r.BeforeSave(nil))
	assert.True(t, r.IsResolved())

	r = validReport()
	assert.NoError(t, r.BeforeSave(nil))
	assert.False(t, r.IsResolved())
}

func TestBeforeSaveRejectsInvalidResolutionStatus(t *testing.T) {
	on := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	status := ResolutionStatus("vanished")

	r := validReport()
	r.ResolvedOn = &on
	r.ResolutionStatus = &status
	assert.ErrorIs(t, r.BeforeSave(nil), ErrInvalidEnumValue)
}

func TestValidate(t *testing.T) {
	r := validReport()
	assert.NoError(t, r.Validate())

	r = validReport()
	r.OwnerEmail = "not-an-email"
	assert.Error(t, r.Validate())

	r = validReport()
	r.PostalCode = "2800"
	assert.Error(t, r.Validate())

	r = validReport()
	r.Name = ""
	assert.Error(t, r.Validate())
}

func TestPhotoURLs(t *testing.T) {
	p := Photo{ID: 12}
	assert.Equal(t, "/photos/12", p.URL())
	assert.Equal(t, "/photos/12/thumb", p.ThumbURL())
}

func TestPhotoBeforeSaveNormalizesRole(t *testing.T) {
	p := Photo{Role: " Front "}
	require.NoError(t, p.BeforeSave(nil))
	assert.Equal(t, "front", p.Role)

	p = Photo{}
	require.NoError(t, p.BeforeSave(nil))
	assert.Equal(t, "unknown", p.Role)
}
