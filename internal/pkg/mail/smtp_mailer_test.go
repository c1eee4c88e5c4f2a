package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipients(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		extra   []string
		want    []string
	}{
		{
			name:    "single primary",
			primary: "a@example.com",
			want:    []string{"a@example.com"},
		},
		{
			name:    "comma separated primary with spaces",
			primary: "a@example.com, b@example.com ,",
			want:    []string{"a@example.com", "b@example.com"},
		},
		{
			name:    "extras appended after primary",
			primary: "a@example.com",
			extra:   []string{"b@example.com", "c@example.com"},
			want:    []string{"a@example.com", "b@example.com", "c@example.com"},
		},
		{
			name:    "duplicates dropped in order",
			primary: "a@example.com,b@example.com",
			extra:   []string{"a@example.com", "c@example.com", "b@example.com"},
			want:    []string{"a@example.com", "b@example.com", "c@example.com"},
		},
		{
			name:    "blanks skipped",
			primary: " , ",
			extra:   []string{"", "a@example.com"},
			want:    []string{"a@example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recipients(tt.primary, tt.extra))
		})
	}
}

func TestSendReportMailIncompleteConfig(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_USERNAME", "")
	t.Setenv("SMTP_PASSWORD", "")
	t.Setenv("SMTP_TO_EMAIL", "")

	err := SendReportMail("subject", "body", nil, nil)
	assert.ErrorIs(t, err, ErrIncompleteConfig)
}

func TestBuildMessageHeadersAndBody(t *testing.T) {
	msg, err := buildMessage("sender@example.com", []string{"a@example.com", "b@example.com"}, "Pet found", "Hello", nil)
	require.NoError(t, err)

	s := string(msg)
	assert.Contains(t, s, "From: sender@example.com\r\n")
	assert.Contains(t, s, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, s, "Subject: Pet found\r\n")
	assert.Contains(t, s, "MIME-Version: 1.0\r\n")
	assert.Contains(t, s, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, s, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, s, "Hello")
}

func TestBuildMessageAttachments(t *testing.T) {
	atts := []Attachment{
		{FileName: "photo.jpg", MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}},
		{FileName: "empty.jpg", MimeType: "image/jpeg", Data: nil}, // skipped
		{FileName: "blob.bin", Data: []byte("x")},                  // defaults to octet-stream
	}

	msg, err := buildMessage("s@example.com", []string{"r@example.com"}, "subj", "body", atts)
	require.NoError(t, err)

	s := string(msg)
	assert.Contains(t, s, `attachment; filename="photo.jpg"`)
	assert.Contains(t, s, "Content-Transfer-Encoding: base64")
	assert.Contains(t, s, "Content-Type: application/octet-stream")
	assert.NotContains(t, s, "empty.jpg")
}

func TestWriteBase64WrapsAt76Columns(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, writeBase64(&sb, make([]byte, 100)))

	lines := strings.Split(strings.TrimRight(sb.String(), "\r\n"), "\r\n")
	require.Greater(t, len(lines), 1)
	for _, line := range lines[:len(lines)-1] {
		assert.Len(t, line, 76)
	}
	assert.LessOrEqual(t, len(lines[len(lines)-1]), 76)
}
