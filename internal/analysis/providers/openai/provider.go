// Package openai backs the analyzer with the OpenAI chat completions
// API.
package openai

import (
	"context"
	stderrors "errors"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/pkg/errors"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Config configures the OpenAI backend.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional endpoint override
}

// completionClient is the slice of the SDK the provider needs; tests
// substitute a fake.
type completionClient interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type serviceAdapter struct {
	service openai.ChatCompletionService
}

func (a serviceAdapter) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	return a.service.New(ctx, params, opts...)
}

// Provider is an analysis backend over OpenAI chat completions.
type Provider struct {
	completions completionClient
	model       string
}

// New builds an OpenAI provider.
func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.ErrAPIKeyRequired
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Provider{
		completions: serviceAdapter{service: client.Chat.Completions},
		model:       model,
	}, nil
}

// Name implements analysis.Provider.
func (p *Provider) Name() string { return "openai" }

// Complete implements analysis.Provider. Temperature is pinned to zero
// so repeated runs stay comparable.
func (p *Provider) Complete(ctx context.Context, req analysis.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(0),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
				},
			},
		}
	}

	resp, err := p.completions.New(ctx, params)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewAPIError("openai", 0, "completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		return &errors.APIError{
			Service:    "openai",
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
			Err:        err,
		}
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.ErrCanceled
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrTimeout
	}
	return errors.WrapAPI("openai", 0, err)
}
