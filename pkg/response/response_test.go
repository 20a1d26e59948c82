package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessSpreadsPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, "Order placed successfully", response.Payload{"order_id": 5, "error": "ignored"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["error"])
	assert.Equal(t, "Order placed successfully", body["message"])
	assert.EqualValues(t, 5, body["order_id"])
}

func TestFromErrorKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("Recipe ID required"), 400, "Recipe ID required"},
		{apperr.Auth("Invalid credentials."), 401, "Invalid credentials."},
		{apperr.Forbidden("Admins only."), 403, "Admins only."},
		{apperr.NotFound("Order not found"), 404, "Order not found"},
		{apperr.Conflict("Email already exists."), 409, "Email already exists."},
		{errors.New("disk on fire"), 500, "Internal server error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		response.FromError(rec, req, tc.err)

		assert.Equal(t, tc.status, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["error"])
		assert.Equal(t, tc.msg, body["message"])
		assert.EqualValues(t, tc.status, body["code"])
	}
}

func TestFromErrorValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	response.FromError(rec, req, apperr.ValidationFields("Missing required fields.", map[string]string{"email": "email is a required field"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Missing required fields.", body["message"])
	assert.Contains(t, body["errors"], "email")
}
