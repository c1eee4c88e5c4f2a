package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petalert/app/models"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "Pet found", Subject(models.ReportKindFound))
	assert.Equal(t, "Pet missing", Subject(models.ReportKindMissing))
	assert.Equal(t, "Pet report", Subject(models.ReportKind("weird")))
}

func TestSummaryFieldOrder(t *testing.T) {
	breed := "labrador"
	age := 3
	r := &models.PetReport{
		ID:           7,
		Kind:         models.ReportKindMissing,
		Name:         "rex",
		Species:      "dog",
		Breed:        &breed,
		Age:          &age,
		Locality:     "madrid",
		PostalCode:   "28001",
		OwnerEmail:   "owner@example.com",
		OwnerPhone:   "600111222",
		Color:        "brown",
		Sex:          models.PetSexMale,
		Size:         models.PetSizeMedium,
		RegisteredOn: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	fields := Summary(r)
	require.Len(t, fields, 19)

	assert.Equal(t, Field{"ID", "7"}, fields[0])
	assert.Equal(t, Field{"Report kind", "missing"}, fields[1])
	assert.Equal(t, Field{"Name", "rex"}, fields[2])
	assert.Equal(t, Field{"Breed", "labrador"}, fields[4])
	assert.Equal(t, Field{"Age", "3"}, fields[5])
	assert.Equal(t, Field{"Registered on", "05/03/2026"}, fields[16])
	assert.Equal(t, Field{"Resolved on", ""}, fields[17])
	assert.Equal(t, Field{"Resolution status", ""}, fields[18])
}

func TestBodyRendersNAForEmptyValues(t *testing.T) {
	body := Body("Pet missing", []Field{
		{"Name", "rex"},
		{"Breed", ""},
	})

	lines := strings.Split(body, "\n")
	assert.Equal(t, "Pet missing", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Pet details:", lines[2])
	assert.Equal(t, "--------------------", lines[3])
	assert.Equal(t, "Name: rex", lines[4])
	assert.Equal(t, "Breed: N/A", lines[5])
	assert.Equal(t, "This message was generated automatically by PetAlert.", lines[len(lines)-1])
}

func TestAttachmentsFromPhotos(t *testing.T) {
	photos := []models.Photo{
		{ID: 1, Role: "front", Data: []byte{1, 2}, MimeType: "image/jpeg", FileName: "front.jpg", SizeBytes: 2},
		{ID: 2, Role: "side", Data: nil}, // no payload, dropped
		{ID: 3, Role: "back", Data: []byte{3}},
	}

	atts := AttachmentsFromPhotos(photos)
	require.Len(t, atts, 2)
	assert.Equal(t, "front.jpg", atts[0].FileName)
	assert.Equal(t, "photo_3.jpg", atts[1].FileName, "missing file name gets a generated one")
	assert.Equal(t, uint(3), atts[1].ID)
}
