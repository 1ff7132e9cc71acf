package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mementolab/driftwatch/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "article",
			ID:       "greek-elections",
		}
		assert.Equal(t, "article greek-elections not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("pair", "0004")
		assert.Equal(t, "pair 0004 not found", err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("dataset", "missing")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "from_date",
			Message: "must be YYYYMMDD",
		}
		assert.Equal(t, "validation failed for field from_date: must be YYYYMMDD", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("", nil, "empty input")
		assert.Equal(t, "validation failed: empty input", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestAPIError(t *testing.T) {
	t.Run("rate limited maps to sentinel", func(t *testing.T) {
		err := pkgerrors.NewAPIError("openai", 429, "too many requests")
		assert.True(t, errors.Is(err, pkgerrors.ErrRateLimited))
		assert.True(t, pkgerrors.IsRateLimited(err))
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("server error maps to unavailable", func(t *testing.T) {
		err := pkgerrors.NewAPIError("wayback", 503, "overloaded")
		assert.True(t, errors.Is(err, pkgerrors.ErrServiceUnavailable))
		assert.True(t, pkgerrors.IsServiceUnavailable(err))
	})

	t.Run("client error maps to nothing", func(t *testing.T) {
		err := pkgerrors.NewAPIError("wayback", 404, "missing")
		assert.False(t, errors.Is(err, pkgerrors.ErrRateLimited))
		assert.False(t, errors.Is(err, pkgerrors.ErrServiceUnavailable))
	})

	t.Run("unwrap", func(t *testing.T) {
		inner := errors.New("connection reset")
		err := pkgerrors.WrapAPI("openai", 0, inner)
		require.Error(t, err)
		assert.True(t, errors.Is(err, inner))
		assert.Contains(t, err.Error(), "API error from openai")
	})
}

func TestRetrieveError(t *testing.T) {
	inner := errors.New("timeout")
	err := pkgerrors.NewRetrieveError("https://web.archive.org/web/2012/x", 5, inner)
	assert.Contains(t, err.Error(), "after 5 attempts")
	assert.True(t, errors.Is(err, inner))

	bare := pkgerrors.NewRetrieveError("https://example.com", 0, inner)
	assert.NotContains(t, bare.Error(), "attempts")
}

func TestAnalysisError(t *testing.T) {
	inner := pkgerrors.NewAPIError("openai", 429, "slow down")
	err := pkgerrors.NewAnalysisError("www.nytimes.com_2012_greek-elections", 3, inner)
	assert.Contains(t, err.Error(), "pair 3")
	// The chain preserves sentinel classification through the wrapper.
	assert.True(t, pkgerrors.IsRateLimited(err))
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil in nil out", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapIO("read", "/tmp/x", nil))
		assert.NoError(t, pkgerrors.WrapParse("json", "x.json", nil))
		assert.NoError(t, pkgerrors.WrapValidation("field", nil))
		assert.NoError(t, pkgerrors.WrapAPI("svc", 500, nil))
	})

	t.Run("io wrap", func(t *testing.T) {
		inner := errors.New("disk full")
		err := pkgerrors.WrapIO("write", "dataset/a.json", inner)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "IO error during write of dataset/a.json")
		assert.True(t, errors.Is(err, inner))
	})

	t.Run("parse wrap", func(t *testing.T) {
		inner := errors.New("unexpected end of JSON input")
		err := pkgerrors.WrapParse("json", "metrics.json", inner)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse error in json file metrics.json")
	})
}
