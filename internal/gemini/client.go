package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Client wraps the Gemini File API and content generation. File storage and
// retrieval live entirely on the provider side; this service only keeps the
// opaque URI/name pair returned by Upload.
type Client struct {
	genai *genai.Client
	model string
	log   *zap.Logger
}

func NewClient(ctx context.Context, apiKey, model string, log *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	return &Client{
		genai: client,
		model: model,
		log:   log,
	}, nil
}

// Upload pushes a local file to the Gemini File API. Size and MIME validation
// happen upstream; the path is expected to name a readable scratch file.
func (c *Client) Upload(ctx context.Context, localPath, mimeType string) (*genai.File, error) {
	file, err := c.genai.Files.UploadFromPath(ctx, localPath, &genai.UploadFileConfig{
		MIMEType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini file upload failed: %w", err)
	}
	c.log.Info("uploaded file to gemini",
		zap.String("name", file.Name),
		zap.String("uri", file.URI),
	)
	return file, nil
}

// Resolve fetches the provider file handle for a stored reference.
func (c *Client) Resolve(ctx context.Context, ref string) (*genai.File, error) {
	file, err := c.genai.Files.Get(ctx, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini file %q not found: %w", ref, err)
	}
	return file, nil
}

// Delete removes the provider copy of a file. Callers treat failure as
// non-fatal: the local metadata row stays regardless.
func (c *Client) Delete(ctx context.Context, name string) error {
	if _, err := c.genai.Files.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("gemini file delete failed: %w", err)
	}
	return nil
}

// Generate sends the query plus resolved file handles to the model and
// returns the reply text. No retry: a provider failure surfaces to the caller.
func (c *Client) Generate(ctx context.Context, query string, files []*genai.File) (string, error) {
	parts := make([]*genai.Part, 0, len(files)+1)
	parts = append(parts, genai.NewPartFromText(query))
	for _, file := range files {
		parts = append(parts, genai.NewPartFromURI(file.URI, file.MIMEType))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	return resp.Text(), nil
}
