package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/pkg/errors"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

func TestRequestConfig(t *testing.T) {
	schema := analysis.Schema()
	config := requestConfig(analysis.Request{
		System:    "sys",
		Schema:    schema,
		MaxTokens: 64,
	})
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	assert.Equal(t, schema, config.ResponseJsonSchema)
	assert.Equal(t, int32(64), config.MaxOutputTokens)

	// Schemaless retries keep the MIME constraint but drop the schema.
	config = requestConfig(analysis.Request{System: "sys"})
	assert.Nil(t, config.ResponseJsonSchema)
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	assert.Zero(t, config.MaxOutputTokens)
}
