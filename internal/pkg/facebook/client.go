// Package facebook posts report summaries with photos to a Facebook page
// feed via the Graph API.
package facebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"petalert/internal/pkg/env"
)

const (
	graphAPIVersion = "v18.0"
	defaultBaseURL  = "https://graph.facebook.com/" + graphAPIVersion
	requestTimeout  = 15 * time.Second
	maxTextLength   = 63000
)

var (
	// ErrNotConfigured means the page token or page ID is missing.
	ErrNotConfigured = errors.New("facebook page token or page ID not configured")
	// ErrTextTooLong means the post body exceeds the feed limit.
	ErrTextTooLong = errors.New("post text exceeds the feed length limit")
)

// Photo is one image to attach to a page post.
type Photo struct {
	FileName string
	MimeType string
	Data     []byte
}

// Client talks to the Graph API for a single page. Construct it explicitly
// with NewClient; there is no package-level client state.
type Client struct {
	token   string
	pageID  string
	baseURL string
	http    *http.Client
}

// NewClient builds a page client from explicit credentials.
func NewClient(token, pageID string) *Client {
	return &Client{
		token:   token,
		pageID:  pageID,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// NewClientFromEnv builds a client from PAGE_ACCESS_TOKEN and
// FACEBOOK_PAGE_ID. Missing values are allowed; Post then fails with
// ErrNotConfigured.
func NewClientFromEnv() *Client {
	return NewClient(env.GetEnv("PAGE_ACCESS_TOKEN", ""), env.GetEnv("FACEBOOK_PAGE_ID", ""))
}

// WithBaseURL points the client at a different Graph endpoint. Tests use it
// to target a local server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.token != "" && c.pageID != ""
}

// PostReport uploads every photo unpublished, then creates one feed post with
// the message and the uploaded media attached. Photos that fail to upload are
// logged and skipped; the feed post itself is still attempted.
func (c *Client) PostReport(message string, photos []Photo) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if len(message) > maxTextLength {
		return ErrTextTooLong
	}

	var mediaIDs []string
	for _, photo := range photos {
		if len(photo.Data) == 0 {
			continue
		}
		id, err := c.uploadPhoto(photo)
		if err != nil {
			log.Warnf("[Facebook] Skipping photo %s: %v", photo.FileName, err)
			continue
		}
		mediaIDs = append(mediaIDs, id)
	}

	form := url.Values{"message": {message}}
	for i, id := range mediaIDs {
		ref, err := json.Marshal(map[string]string{"media_fbid": id})
		if err != nil {
			continue
		}
		form.Set(fmt.Sprintf("attached_media[%d]", i), string(ref))
	}

	_, err := c.postForm(c.baseURL+"/"+c.pageID+"/feed", form)
	return err
}

// uploadPhoto stores one image on the page's photos edge without publishing
// it, returning the media ID for later attachment.
func (c *Client) uploadPhoto(photo Photo) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("published", "false"); err != nil {
		return "", err
	}
	if err := w.WriteField("temporary", "true"); err != nil {
		return "", err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="source"; filename=%q`, photo.FileName))
	mimeType := photo.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(photo.Data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	resp, err := c.do(http.MethodPost, c.baseURL+"/"+c.pageID+"/photos", &body, w.FormDataContentType())
	if err != nil {
		return "", err
	}
	id, ok := resp["id"].(string)
	if !ok || id == "" {
		return "", errors.New("photo upload response carried no media ID")
	}
	return id, nil
}

func (c *Client) postForm(endpoint string, form url.Values) (map[string]interface{}, error) {
	return c.do(http.MethodPost, endpoint, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (c *Client) do(method, endpoint string, body io.Reader, contentType string) (map[string]interface{}, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("access_token", c.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("graph API %s: %s: %s", endpoint, resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode graph API response: %w", err)
	}
	return decoded, nil
}
