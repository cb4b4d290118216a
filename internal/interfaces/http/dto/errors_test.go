package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyPaid, http.StatusUnprocessableEntity},
		{ErrCodeNotRegistered, http.StatusUnprocessableEntity},
		{ErrCodeNoEmail, http.StatusUnprocessableEntity},
		{ErrCodeCredentialIncomplete, http.StatusUnprocessableEntity},
		{ErrCodeCertificateExpired, http.StatusUnprocessableEntity},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_COMPETENCIA", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"ALREADY_PAID", ErrCodeAlreadyPaid},
		{"NOT_REGISTERED", ErrCodeNotRegistered},
		{"NO_EMAIL", ErrCodeNoEmail},
		{"CREDENTIAL_INCOMPLETE", ErrCodeCredentialIncomplete},
		{"CERTIFICATE_EXPIRED", ErrCodeCertificateExpired},
		// Already-normalized and unknown codes pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{"SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestResponseSerialization(t *testing.T) {
	t.Run("success response omits error", func(t *testing.T) {
		data, err := json.Marshal(NewSuccessResponse(map[string]string{"id": "1"}))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"success":true`)
		assert.NotContains(t, string(data), `"error"`)
	})

	t.Run("error response carries request id", func(t *testing.T) {
		data, err := json.Marshal(NewErrorResponseWithRequestID(ErrCodeNotFound, "Boleto not found", "req-1"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"code":"ERR_NOT_FOUND"`)
		assert.Contains(t, string(data), `"request_id":"req-1"`)
	})

	t.Run("meta rounds total pages up", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]int{}, 41, 1, 20)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})
}

func TestListRequestNormalize(t *testing.T) {
	r := ListRequest{}
	r.Normalize()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 20, r.PageSize)

	r = ListRequest{Page: 3, PageSize: 50}
	r.Normalize()
	assert.Equal(t, 3, r.Page)
	assert.Equal(t, 50, r.PageSize)
}
