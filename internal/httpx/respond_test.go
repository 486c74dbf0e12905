package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonb2b/orders-backend/internal/apperr"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(apperr.KindValidation))
	assert.Equal(t, http.StatusNotFound, statusFor(apperr.KindNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(apperr.KindConflict))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(apperr.KindInvalidState))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(apperr.KindInvalidTransition))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperr.KindInternal))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperr.KindUnknown))
}

func TestWriteErr_TaxonomyCode(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, apperr.InvalidTransition("cannot move order from SHIPPED to CONFIRMED"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_TRANSITION", body.Code)
	assert.Contains(t, body.Error, "SHIPPED")
}

func TestWriteErr_NeverLeaksStorageErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, apperr.Internal(errors.New("pq: connection refused host=10.0.0.3"), "query orders"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
	assert.Equal(t, "INTERNAL", body.Code)

	rec = httptest.NewRecorder()
	writeErr(rec, errors.New("raw driver error"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
}

func TestParsePage(t *testing.T) {
	req := &http.Request{URL: &url.URL{RawQuery: "skip=20&limit=10"}}
	skip, limit := parsePage(req)
	assert.Equal(t, 20, skip)
	assert.Equal(t, 10, limit)

	req = &http.Request{URL: &url.URL{RawQuery: "skip=-5&limit=junk"}}
	skip, limit = parsePage(req)
	assert.Equal(t, 0, skip)
	assert.Equal(t, 0, limit)
}
