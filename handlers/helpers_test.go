package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/slot-arena/services"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		fullStatus int
		status     int
		want       map[string]interface{}
	}{
		{
			name:   "validation",
			err:    &services.ValidationError{Messages: []string{"Game type is required", "Payment information is required"}},
			status: http.StatusBadRequest,
			want: map[string]interface{}{
				"success": false,
				"message": "Validation failed",
				"errors":  []interface{}{"Game type is required", "Payment information is required"},
			},
		},
		{
			name:       "full on submit",
			err:        &services.CapacityExceededError{AvailableSlots: 0, MaxSlots: 25},
			fullStatus: http.StatusBadRequest,
			status:     http.StatusBadRequest,
			want:       map[string]interface{}{"success": false, "message": "Tournament is full", "availableSlots": 0.0, "maxSlots": 25.0},
		},
		{
			name:       "full on approve",
			err:        fmt.Errorf("decide: %w", &services.CapacityExceededError{MaxSlots: 1}),
			fullStatus: http.StatusConflict,
			status:     http.StatusConflict,
			want:       map[string]interface{}{"success": false, "message": "Tournament is full", "availableSlots": 0.0, "maxSlots": 1.0},
		},
		{
			name:   "duplicate",
			err:    &services.DuplicateRegistrationError{RegistrationID: "r-1"},
			status: http.StatusBadRequest,
			want:   map[string]interface{}{"success": false, "message": "You have already registered for this tournament", "registrationId": "r-1"},
		},
		{
			name:   "not found",
			err:    services.ErrRegistrationNotFound,
			status: http.StatusNotFound,
			want:   map[string]interface{}{"success": false, "message": "Registration not found"},
		},
		{
			name:   "already decided",
			err:    services.ErrRegistrationAlreadyDecided,
			status: http.StatusConflict,
			want:   map[string]interface{}{"success": false, "message": "Registration has already been decided"},
		},
		{
			name:   "invalid status",
			err:    services.ErrInvalidStatus,
			status: http.StatusBadRequest,
			want:   map[string]interface{}{"success": false, "message": "Invalid status"},
		},
		{
			name:   "bad credentials",
			err:    services.ErrAuthInvalidCredentials,
			status: http.StatusUnauthorized,
			want:   map[string]interface{}{"success": false, "message": "Invalid username or password"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil), tt.err, tt.fullStatus)

			assert.Equal(t, tt.status, rec.Code)
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMapServiceErrorToHTTP_UnknownIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("connection reset"), http.StatusConflict)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestReadJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	tests := []struct {
		body string
		want string
	}{
		{``, "body must not be empty"},
		{`{"name":`, "body contains badly-formed JSON"},
		{`{"name": 1}`, `body contains incorrect JSON type for field "name"`},
		{`{"other": "x"}`, `body contains unknown key "other"`},
		{`{"name":"a"}{"name":"b"}`, "body must only contain a single JSON value"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		err := readJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err, tt.body)
		assert.Equal(t, tt.want, err.Error(), tt.body)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"arena"}`))
	require.NoError(t, readJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "arena", dst.Name)
}

func TestParseKeyParams(t *testing.T) {
	key, err := parseKeyParams(" bgmi ", "squad")
	require.NoError(t, err)
	assert.Equal(t, "bgmi:squad", key.String())

	_, err = parseKeyParams("", "squad")
	assert.EqualError(t, err, "game type and tournament type are required")

	_, err = parseKeyParams("bgmi", "trio")
	assert.ErrorIs(t, err, services.ErrInvalidTournamentKey)
}
