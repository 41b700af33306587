package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/petmily/service-reservation/internal/application"
	"github.com/petmily/service-reservation/internal/platform/auth"
	"github.com/petmily/service-reservation/internal/platform/response"
)

// newTestRouter wires handlers over services without backing stores. Every
// case here is rejected before a store would be reached.
func newTestRouter(t *testing.T) (*gin.Engine, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtManager := auth.NewJWTManager("secret", "petmily", time.Minute, time.Hour)

	reservations := application.NewReservationService(nil, nil, nil, nil, zap.NewNop())
	pets := application.NewPetService(nil, nil, nil, nil, zap.NewNop(), 1<<20)

	r := gin.New()
	api := r.Group("")
	NewReservationHandler(reservations).RegisterRoutes(api, jwtManager)
	NewAdminReservationHandler(reservations).RegisterRoutes(api, jwtManager)
	NewPetHandler(pets, 1<<20).RegisterRoutes(api, jwtManager)
	return r, jwtManager
}

func token(t *testing.T, m *auth.JWTManager, role auth.Role) string {
	t.Helper()
	tok, err := m.GenerateAccessToken(uuid.New(), role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRoutesRejectBadRequests(t *testing.T) {
	r, m := newTestRouter(t)
	member := token(t, m, auth.RoleMember)
	petsitter := token(t, m, auth.RolePetsitter)

	window, err := json.Marshal(map[string]time.Time{
		"start_at": time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
		"end_at":   time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		body   []byte
		want   int
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/reservations/member", want: http.StatusUnauthorized},
		{name: "member cannot confirm", method: http.MethodPatch, path: "/api/v1/reservations/" + uuid.NewString() + "/confirm", auth: member, want: http.StatusForbidden},
		{name: "petsitter cannot member-cancel", method: http.MethodPatch, path: "/api/v1/reservations/" + uuid.NewString() + "/membercancel", auth: petsitter, want: http.StatusForbidden},
		{name: "admin only", method: http.MethodGet, path: "/api/v1/admin/reservations", auth: member, want: http.StatusForbidden},
		{name: "bad reservation id", method: http.MethodGet, path: "/api/v1/reservations/not-a-uuid", auth: member, want: http.StatusBadRequest},
		{name: "bad petsitter id", method: http.MethodGet, path: "/api/v1/reservations/schedule/nope", auth: member, want: http.StatusBadRequest},
		{name: "unknown condition", method: http.MethodGet, path: "/api/v1/reservations/member?condition=someday", auth: member, want: http.StatusBadRequest},
		{name: "inverted window", method: http.MethodPost, path: "/api/v1/reservations/petsitters", auth: member, body: window, want: http.StatusBadRequest},
		{name: "missing fields", method: http.MethodPost, path: "/api/v1/reservations", auth: member, body: []byte(`{}`), want: http.StatusBadRequest},
		{name: "bad pet id", method: http.MethodPatch, path: "/api/v1/pets/123", auth: member, want: http.StatusBadRequest},
		{name: "petsitter cannot create pets", method: http.MethodPost, path: "/api/v1/pets", auth: petsitter, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader(tt.body))
			if tt.body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestValidationErrorBody(t *testing.T) {
	r, m := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/member?condition=someday", nil)
	req.Header.Set("Authorization", token(t, m, auth.RoleMember))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
	assert.Contains(t, env.Error.Message, "someday")
}
