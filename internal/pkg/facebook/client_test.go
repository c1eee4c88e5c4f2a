package facebook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigured(t *testing.T) {
	assert.True(t, NewClient("token", "page").Configured())
	assert.False(t, NewClient("", "page").Configured())
	assert.False(t, NewClient("token", "").Configured())
}

func TestPostReportNotConfigured(t *testing.T) {
	err := NewClient("", "").PostReport("hello", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPostReportTextTooLong(t *testing.T) {
	err := NewClient("token", "page").PostReport(strings.Repeat("x", maxTextLength+1), nil)
	assert.ErrorIs(t, err, ErrTextTooLong)
}

func TestPostReportUploadsPhotosThenPostsFeed(t *testing.T) {
	var uploads int
	var feedForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.URL.Query().Get("access_token"))

		switch r.URL.Path {
		case "/page-1/photos":
			uploads++
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "false", r.FormValue("published"))
			assert.Equal(t, "true", r.FormValue("temporary"))
			_, fh, err := r.FormFile("source")
			require.NoError(t, err)
			assert.Equal(t, "pet.jpg", fh.Filename)
			w.Write([]byte(`{"id":"media-42"}`))
		case "/page-1/feed":
			require.NoError(t, r.ParseForm())
			feedForm = r.PostForm
			w.Write([]byte(`{"id":"post-1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient("secret-token", "page-1").WithBaseURL(srv.URL)
	photos := []Photo{
		{FileName: "pet.jpg", MimeType: "image/jpeg", Data: []byte{0xff, 0xd8}},
		{FileName: "empty.jpg", MimeType: "image/jpeg"}, // no data, skipped
	}

	require.NoError(t, client.PostReport("Found dog in Madrid", photos))

	assert.Equal(t, 1, uploads)
	require.NotNil(t, feedForm)
	assert.Equal(t, "Found dog in Madrid", feedForm["message"][0])
	assert.JSONEq(t, `{"media_fbid":"media-42"}`, feedForm["attached_media[0]"][0])
}

func TestPostReportSkipsFailedUploads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page-1/photos":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"bad image"}}`))
		case "/page-1/feed":
			require.NoError(t, r.ParseForm())
			assert.Empty(t, r.PostForm["attached_media[0]"])
			w.Write([]byte(`{"id":"post-1"}`))
		}
	}))
	defer srv.Close()

	client := NewClient("token", "page-1").WithBaseURL(srv.URL)
	err := client.PostReport("message", []Photo{{FileName: "x.jpg", Data: []byte{1}}})
	assert.NoError(t, err, "feed post should still happen when photo uploads fail")
}

func TestPostReportFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"expired token"}}`))
	}))
	defer srv.Close()

	client := NewClient("token", "page-1").WithBaseURL(srv.URL)
	err := client.PostReport("message", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired token")
}
