package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/slot-arena/handlers"
	"github.com/Dosada05/slot-arena/middleware"
	"github.com/Dosada05/slot-arena/realtime"
	"github.com/Dosada05/slot-arena/repositories/memory"
	"github.com/Dosada05/slot-arena/services"
	"github.com/Dosada05/slot-arena/storage"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "routes-test-secret"

type testServer struct {
	*httptest.Server
	hub *realtime.Hub
}

func newTestServer(t *testing.T, ratePerMinute, burst int) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	hub := realtime.NewHub(logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	tournaments := services.NewTournamentService(store, hub, logger)
	registrations := services.NewRegistrationService(store, tournaments, logger)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Auth:         handlers.NewAuthHandler(services.NewAuthService(store, logger), jwtSecret, time.Hour),
		Registration: handlers.NewRegistrationHandler(registrations),
		Tournament:   handlers.NewTournamentHandler(tournaments),
		Upload:       handlers.NewUploadHandler(services.NewUploadService(storage.NewDataURLUploader(), logger), tournaments),
		Dashboard:    handlers.NewDashboardHandler(services.NewDashboardService(store, tournaments)),
		WebSocket:    handlers.NewWebSocketHandler(hub, []string{"*"}, logger),
		Health:       handlers.NewHealthHandler(store.Health, "memory"),
	}, Options{
		JWTSecret:      []byte(jwtSecret),
		AllowedOrigins: []string{"*"},
		PublicLimiter:  middleware.NewRateLimiter(ratePerMinute, burst),
		Logger:         logger,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &testServer{Server: srv, hub: hub}
}

type envelope map[string]interface{}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// adminToken bootstraps the first admin and logs in.
func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	status, _ := s.do(t, http.MethodPost, "/api/auth/init", "", map[string]string{"username": "root", "password": "correct-horse"})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "root", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, status)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func soloRegistration(leaderID string) map[string]interface{} {
	return map[string]interface{}{
		"gameType":       "bgmi",
		"tournamentType": "solo",
		"teamLeader":     map[string]string{"name": "Arjun", "gameId": leaderID, "whatsapp": "9876543210"},
		"payment":        map[string]string{"screenshot": "https://cdn.example.com/p.png", "transactionId": "TXN12345"},
	}
}

func TestRegistrationLifecycle(t *testing.T) {
	srv := newTestServer(t, 600, 100)
	token := srv.adminToken(t)

	status, body := srv.do(t, http.MethodPost, "/api/registrations", "", soloRegistration("1234567890"))
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, true, body["success"])
	reg := body["registration"].(map[string]interface{})
	id := reg["id"].(string)
	assert.Equal(t, "pending", reg["status"])
	slotInfo := body["slotInfo"].(map[string]interface{})
	assert.EqualValues(t, 100, slotInfo["availableSlots"])

	status, body = srv.do(t, http.MethodPost, "/api/registrations", "", soloRegistration("1234567890"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, id, body["registrationId"])

	status, body = srv.do(t, http.MethodGet, "/api/registrations/"+id, "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = srv.do(t, http.MethodGet, "/api/registrations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = srv.do(t, http.MethodGet, "/api/registrations?status=pending", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, body = srv.do(t, http.MethodPatch, "/api/registrations/"+id, token, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, status, body)
	reg = body["registration"].(map[string]interface{})
	assert.Equal(t, "approved", reg["status"])
	assert.Equal(t, "root", reg["approvedBy"])

	status, _ = srv.do(t, http.MethodPatch, "/api/registrations/"+id, token, map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = srv.do(t, http.MethodPatch, "/api/registrations/"+id, token, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = srv.do(t, http.MethodGet, "/api/tournaments?gameType=bgmi", "", nil)
	require.Equal(t, http.StatusOK, status)
	slots := body["tournaments"].([]interface{})
	require.Len(t, slots, 3)
	solo := slots[0].(map[string]interface{})
	assert.EqualValues(t, 1, solo["approvedCount"])
	assert.EqualValues(t, 99, solo["availableSlots"])

	status, body = srv.do(t, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["approvedCount"])

	status, _ = srv.do(t, http.MethodDelete, "/api/registrations/"+id, token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = srv.do(t, http.MethodGet, "/api/registrations/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmitValidationErrors(t *testing.T) {
	srv := newTestServer(t, 600, 100)

	in := soloRegistration("123")
	in["payment"] = map[string]string{"screenshot": "x", "transactionId": "abc"}
	status, body := srv.do(t, http.MethodPost, "/api/registrations", "", in)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	errs := body["errors"].([]interface{})
	assert.Contains(t, errs, "BGMI ID must be exactly 10 digits")
	assert.Contains(t, errs, "Transaction ID must be at least 5 characters")

	status, body = srv.do(t, http.MethodPost, "/api/registrations", "", map[string]string{"unexpected": "field"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["message"], "Body contains unknown key")
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	srv := newTestServer(t, 600, 100)
	token := srv.adminToken(t)

	reset := map[string]string{"gameType": "bgmi", "tournamentType": "solo"}
	status, _ := srv.do(t, http.MethodPost, "/api/tournaments/reset", "", reset)
	assert.Equal(t, http.StatusUnauthorized, status)

	// super admin из /auth/init имеет все права
	status, body := srv.do(t, http.MethodPost, "/api/tournaments/reset", token, reset)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["deletedRegistrations"])

	status, _ = srv.do(t, http.MethodPost, "/api/auth/init", "", map[string]string{"username": "again", "password": "correct-horse"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "root", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = srv.do(t, http.MethodPut, "/api/tournaments", token, map[string]string{"gameType": "bgmi", "tournamentType": "duo", "roomId": "R-7"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "R-7", body["tournament"].(map[string]interface{})["roomId"])

	status, body = srv.do(t, http.MethodPost, "/api/admin/reconcile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["tournaments"], 6)
}

func TestSubmitRateLimited(t *testing.T) {
	srv := newTestServer(t, 1, 1)

	status, _ := srv.do(t, http.MethodPost, "/api/registrations", "", soloRegistration("1111111111"))
	assert.Equal(t, http.StatusCreated, status)
	status, _ = srv.do(t, http.MethodPost, "/api/registrations", "", soloRegistration("2222222222"))
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func multipartImage(t *testing.T, fields map[string]string, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="proof.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploads(t *testing.T) {
	srv := newTestServer(t, 600, 100)
	token := srv.adminToken(t)

	body, ct := multipartImage(t, nil, "image/png", []byte("png-bytes"))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/upload", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	status, out := srv.send(t, req)
	require.Equal(t, http.StatusCreated, status, out)
	assert.True(t, strings.HasPrefix(out["url"].(string), "data:image/png;base64,"))

	body, ct = multipartImage(t, nil, "application/pdf", []byte("pdf"))
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/upload", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	status, _ = srv.send(t, req)
	assert.Equal(t, http.StatusBadRequest, status)

	body, ct = multipartImage(t, map[string]string{"gameType": "freefire", "tournamentType": "squad"}, "image/png", []byte("qr"))
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/admin/qr-code", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	status, out = srv.send(t, req)
	require.Equal(t, http.StatusCreated, status, out)
	slot := out["tournament"].(map[string]interface{})
	assert.Equal(t, out["url"], slot["qrCodeUrl"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 600, 100)

	status, body := srv.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "memory", body["store"])
}

func TestWebSocketReceivesSlotUpdates(t *testing.T) {
	srv := newTestServer(t, 600, 100)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tournaments/bgmi/solo"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.hub.RoomSize("bgmi:solo") == 1 }, time.Second, 5*time.Millisecond)

	status, _ := srv.do(t, http.MethodPost, "/api/registrations", "", soloRegistration("1234567890"))
	require.Equal(t, http.StatusCreated, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg realtime.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, realtime.MessageSlotUpdated, msg.Type)
	payload := msg.Payload.(map[string]interface{})
	assert.EqualValues(t, 1, payload["pendingCount"])

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/tournaments/pubg/solo", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
