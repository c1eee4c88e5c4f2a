package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	pngHead  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
	gifHead  = []byte("GIF89a\x01\x00\x01\x00")
)

func TestValidateImageBySniffAccepted(t *testing.T) {
	tests := []struct {
		filename string
		head     []byte
		wantMime string
	}{
		{"pet.jpg", jpegHead, "image/jpeg"},
		{"pet.JPEG", jpegHead, "image/jpeg"},
		{"pet.png", pngHead, "image/png"},
		{"pet.gif", gifHead, "image/gif"},
	}
	for _, tt := range tests {
		mime, err := ValidateImageBySniff(tt.filename, tt.head)
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.wantMime, mime, tt.filename)
	}
}

func TestValidateImageBySniffRejectsUnknownExtension(t *testing.T) {
	_, err := ValidateImageBySniff("pet.exe", jpegHead)
	assert.Error(t, err)

	_, err = ValidateImageBySniff("pet.svg", []byte("<svg></svg>"))
	assert.Error(t, err)
}

func TestValidateImageBySniffRejectsHTMLContent(t *testing.T) {
	_, err := ValidateImageBySniff("pet.jpg", []byte("<html><body>hi</body></html>"))
	assert.Error(t, err)
}

func TestValidateImageBySniffRejectsMismatchedContent(t *testing.T) {
	_, err := ValidateImageBySniff("pet.png", []byte("just some plain text here"))
	assert.Error(t, err)
}
