// Package vision wraps the generative-AI API used for breed identification
// and photo comparison. The client is constructed explicitly and passed by
// reference; there is no package-level mutable state.
package vision

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"petalert/internal/pkg/env"
)

const defaultModel = "gemini-2.0-flash"

// ErrNoImages means a request carried no usable image payloads.
var ErrNoImages = errors.New("no images supplied")

// Image is one inline image payload for a vision request.
type Image struct {
	MimeType string
	Data     []byte
}

// Client issues vision requests against a fixed model.
type Client struct {
	genai *genai.Client
	model string
}

// NewClient builds a vision client for the given API key.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("vision API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &Client{genai: client, model: model}, nil
}

// NewClientFromEnv builds a client from GENAI_API_KEY and VISION_MODEL.
// A missing key yields (nil, error); callers treat that as the feature being
// unavailable, not as a fatal condition.
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	return NewClient(ctx, env.GetEnv("GENAI_API_KEY", ""), env.GetEnv("VISION_MODEL", defaultModel))
}

// SetModel switches the model used for subsequent requests.
func (c *Client) SetModel(model string) {
	if model != "" {
		c.model = model
	}
}

// Describe sends the prompt plus the images and returns the model's text.
func (c *Client) Describe(ctx context.Context, prompt string, images []Image) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	usable := 0
	for _, img := range images {
		if len(img.Data) == 0 {
			continue
		}
		mimeType := img.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(img.Data, mimeType))
		usable++
	}
	if usable == 0 {
		return "", ErrNoImages
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	result, err := c.genai.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("vision model returned no text")
	}
	return text, nil
}

// IdentifyBreed asks the model for the most likely breed shown in the photos.
func (c *Client) IdentifyBreed(ctx context.Context, species string, images []Image) (string, error) {
	prompt := "Look at the attached photos of a pet"
	if species != "" {
		prompt += " (" + species + ")"
	}
	prompt += " and state the most likely breed. Answer with the breed name and a one-sentence justification."
	return c.Describe(ctx, prompt, images)
}

// ComparePhotos asks the model whether the two photo sets show the same
// animal. The first len(first) images belong to the missing report, the rest
// to the found report.
func (c *Client) ComparePhotos(ctx context.Context, first, second []Image) (string, error) {
	prompt := fmt.Sprintf(
		"The first %d attached photos show a missing pet; the remaining %d show a pet that was found. "+
			"Compare them and state whether they could be the same animal, with a short justification.",
		len(first), len(second))
	return c.Describe(ctx, prompt, append(append([]Image{}, first...), second...))
}
