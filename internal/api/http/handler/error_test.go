package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devhive/identity-server/internal/apperrors"
	"github.com/devhive/identity-server/internal/model"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError_APIError(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, apperrors.NewErrUseridTaken())

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, apperrors.CodeUserDuplication, body.Code)
}

func TestHandleError_WrappedAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := errors.Join(errors.New("outer"), apperrors.NewErrWrongPassword())
	handleError(rec, wrapped)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, apperrors.CodeAuthentication, body.Code)
}

func TestHandleError_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, model.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleError_Unrecognized(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, apperrors.CodeInternal, body.Code)
	assert.NotContains(t, body.Message, "connection refused")
}
