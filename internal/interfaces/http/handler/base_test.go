package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imobia/backend/internal/domain/shared"
	"github.com/imobia/backend/internal/interfaces/http/dto"
)

func performHandler(h gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)
	c.Writer.WriteHeaderNow()
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	base := &BaseHandler{}

	tests := []struct {
		name         string
		err          error
		expectStatus int
		expectCode   string
	}{
		{
			name:         "not found sentinel",
			err:          shared.ErrNotFound,
			expectStatus: http.StatusNotFound,
			expectCode:   dto.ErrCodeNotFound,
		},
		{
			name:         "duplicate",
			err:          shared.ErrAlreadyExists,
			expectStatus: http.StatusConflict,
			expectCode:   dto.ErrCodeAlreadyExists,
		},
		{
			name:         "state guard",
			err:          shared.NewDomainError("INVALID_STATE", "Only pending boletos can be deleted"),
			expectStatus: http.StatusUnprocessableEntity,
			expectCode:   dto.ErrCodeInvalidState,
		},
		{
			name:         "credential guard",
			err:          shared.NewDomainError("CERTIFICATE_EXPIRED", "Client certificate expired"),
			expectStatus: http.StatusUnprocessableEntity,
			expectCode:   dto.ErrCodeCertificateExpired,
		},
		{
			name:         "unknown error stays opaque",
			err:          errors.New("pq: connection refused"),
			expectStatus: http.StatusInternalServerError,
			expectCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performHandler(func(c *gin.Context) {
				base.HandleError(c, tt.err)
			})

			assert.Equal(t, tt.expectStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectCode, resp.Error.Code)
			if tt.expectCode == dto.ErrCodeInternal {
				assert.NotContains(t, resp.Error.Message, "pq:")
			}
		})
	}
}

func TestBaseHandler_Responses(t *testing.T) {
	base := &BaseHandler{}

	t.Run("success wraps data", func(t *testing.T) {
		w := performHandler(func(c *gin.Context) {
			base.Success(c, gin.H{"id": "1"})
		})
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
	})

	t.Run("created", func(t *testing.T) {
		w := performHandler(func(c *gin.Context) {
			base.Created(c, nil)
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no content has empty body", func(t *testing.T) {
		w := performHandler(func(c *gin.Context) {
			base.NoContent(c)
		})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("error carries request id from context", func(t *testing.T) {
		w := performHandler(func(c *gin.Context) {
			c.Set("request_id", "req-42")
			base.BadRequest(c, "bad payload")
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-42", resp.Error.RequestID)
	})
}
