package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestFromGoogleClassification(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected Kind
	}{
		{name: "bad request", code: 400, expected: KindValidation},
		{name: "unauthorized", code: 401, expected: KindAuthorization},
		{name: "forbidden", code: 403, expected: KindAuthorization},
		{name: "not found", code: 404, expected: KindNotFound},
		{name: "rate limited", code: 429, expected: KindUpstream},
		{name: "server error", code: 500, expected: KindUpstream},
		{name: "bad gateway", code: 502, expected: KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gerr := &googleapi.Error{Code: tt.code, Message: "boom"}
			err := FromGoogle("get values", gerr)
			require.NotNil(t, err)
			assert.Equal(t, tt.expected, err.Kind)
			assert.Contains(t, err.Message, "get values")
			// The underlying googleapi error must stay reachable.
			var unwrapped *googleapi.Error
			assert.True(t, errors.As(err, &unwrapped))
		})
	}
}

func TestFromGoogleNil(t *testing.T) {
	assert.Nil(t, FromGoogle("op", nil))
}

func TestFromGooglePassesThroughClassified(t *testing.T) {
	orig := Validation("matrix must not be empty")
	err := FromGoogle("update values", fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, err)
}

func TestFromGoogleNetworkError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := FromGoogle("append values", cause)
	require.NotNil(t, err)
	assert.Equal(t, KindUpstream, err.Kind)
	assert.Contains(t, err.Message, "connection reset by peer")
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Authentication("no key"), http.StatusUnauthorized},
		{Authorization("denied"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Upstream(errors.New("x"), "upstream"), http.StatusBadGateway},
		{errors.New("plain"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatus(tt.err), "err=%v", tt.err)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("outer: %w", Validation("inner"))))
	assert.Equal(t, KindUpstream, KindOf(errors.New("plain")))
}
