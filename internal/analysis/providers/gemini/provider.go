// Package gemini backs the analyzer with the Gemini API via the Google
// GenAI SDK.
package gemini

import (
	"context"
	stderrors "errors"
	"strings"

	"google.golang.org/genai"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/pkg/errors"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Config configures the Gemini backend.
type Config struct {
	APIKey string
	Model  string
}

// Provider is an analysis backend over Gemini content generation.
type Provider struct {
	client *genai.Client
	model  string
}

// New builds a Gemini provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.ErrAPIKeyRequired
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, errors.WrapAPI("gemini", 0, err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: client, model: model}, nil
}

// Name implements analysis.Provider.
func (p *Provider) Name() string { return "gemini" }

// Complete implements analysis.Provider. Structured requests pass the
// JSON schema through ResponseJsonSchema; schemaless retries rely on
// the response MIME type alone.
func (p *Provider) Complete(ctx context.Context, req analysis.Request) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), requestConfig(req))
	if err != nil {
		return "", mapError(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.NewAPIError("gemini", 0, "empty completion")
	}
	return strings.TrimSpace(text), nil
}

func requestConfig(req analysis.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
	}
	if req.Schema != nil {
		config.ResponseJsonSchema = req.Schema
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	return config
}

func mapError(err error) error {
	var apiErr *genai.APIError
	if stderrors.As(err, &apiErr) {
		return &errors.APIError{
			Service:    "gemini",
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.ErrCanceled
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrTimeout
	}
	return errors.WrapAPI("gemini", 0, err)
}
