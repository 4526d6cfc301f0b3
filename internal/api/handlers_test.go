package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/industryverse/backend/internal/apperr"
	"github.com/industryverse/backend/internal/config"
	"github.com/industryverse/backend/internal/core"
	"github.com/industryverse/backend/internal/store"
)

// stubRelay stands in for the upstream LLM so handler tests stay fast and
// deterministic.
type stubRelay struct {
	chunks []string
	err    error
}

func (r *stubRelay) StreamChatCompletion(ctx context.Context, systemPrompt string, turns []store.ChatTurn, onChunk func(content string) error) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	var reply strings.Builder
	for _, c := range r.chunks {
		if err := onChunk(c); err != nil {
			return "", err
		}
		reply.WriteString(c)
	}
	return reply.String(), nil
}

type testServer struct {
	router http.Handler
	store  *store.SQLiteStore
	relay  *stubRelay
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		DatabaseURL: ":memory:",
		Env:         "production",
	}
	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { dbStore.Close() })

	relay := &stubRelay{chunks: []string{"Hello", " there"}}
	assistant := core.NewAssistantService(dbStore, relay)
	handler := NewAPIHandler(cfg, dbStore, assistant)

	return &testServer{router: NewRouter(handler), store: dbStore, relay: relay}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "hunter2!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody(t, rec)["token"].(string)
}

// registerAdmin promotes a fresh user and logs in again so the token carries
// the admin role.
func (ts *testServer) registerAdmin(t *testing.T, email string) string {
	t.Helper()
	ts.register(t, email)

	user, err := ts.store.GetUserByEmail(email)
	require.NoError(t, err)
	_, err = ts.store.UpdateUserRole(user.ID, store.RoleAdmin)
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "hunter2!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)["token"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	token := ts.register(t, "a@example.com")
	require.NotEmpty(t, token)

	// Registering the same email again conflicts.
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@example.com", "name": "Again", "password": "pw",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Missing fields are rejected.
	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "b@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong password.
	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "hunter2!",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	require.Equal(t, "a@example.com", user["email"])
	require.NotContains(t, user, "password_hash")
}

func TestAuthMiddlewareRejections(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/auth/me", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGate(t *testing.T) {
	ts := newTestServer(t)
	studentToken := ts.register(t, "student@example.com")
	adminToken := ts.registerAdmin(t, "admin@example.com")

	domain := map[string]string{"name": "Technology", "slug": "technology"}

	rec := ts.do(t, http.MethodPost, "/api/domains", studentToken, domain)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/domains", adminToken, domain)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/domains", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/domains/technology", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/domains/missing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	rec := ts.do(t, http.MethodPut, "/api/auth/profile", token, map[string]string{"bio": "learning Go"})
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	require.Equal(t, "learning Go", user["bio"])
	require.Equal(t, "Test User", user["name"]) // untouched field preserved

	rec = ts.do(t, http.MethodPut, "/api/auth/password", token, map[string]string{
		"current_password": "wrong", "new_password": "newpw123!",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/auth/password", token, map[string]string{
		"current_password": "hunter2!", "new_password": "newpw123!",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "newpw123!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func seedProject(t *testing.T, ts *testServer) store.Project {
	t.Helper()
	domain := store.Domain{Name: "Technology", Slug: "technology"}
	require.NoError(t, ts.store.CreateDomain(&domain))
	role := store.IndustryRole{DomainID: domain.ID, Title: "Software Engineer", Slug: "software-engineer"}
	require.NoError(t, ts.store.CreateRole(&role))
	project := store.Project{RoleID: role.ID, Title: "URL Shortener", Difficulty: "INTERMEDIATE"}
	require.NoError(t, ts.store.CreateProject(&project))
	return project
}

func TestProjectSubmissionFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")
	project := seedProject(t, ts)

	rec := ts.do(t, http.MethodPut, "/api/projects/"+project.ID+"/progress", token, map[string]int{"progress": 150})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/projects/"+project.ID+"/progress", token, map[string]int{"progress": 40})
	require.Equal(t, http.StatusOK, rec.Code)
	submission := decodeBody(t, rec)["submission"].(map[string]interface{})
	require.Equal(t, store.SubmissionInProgress, submission["status"])

	rec = ts.do(t, http.MethodPost, "/api/projects/"+project.ID+"/submit", token, map[string]string{"notes": "done"})
	require.Equal(t, http.StatusOK, rec.Code)
	submission = decodeBody(t, rec)["submission"].(map[string]interface{})
	require.Equal(t, store.SubmissionSubmitted, submission["status"])
	require.Equal(t, float64(100), submission["progress"])

	rec = ts.do(t, http.MethodPost, "/api/projects/missing/submit", token, map[string]string{})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/users/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)["stats"].(map[string]interface{})
	require.Equal(t, float64(0), stats["completed_projects"])
}

func TestAdminReviewSubmission(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")
	adminToken := ts.registerAdmin(t, "admin@example.com")
	project := seedProject(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/projects/"+project.ID+"/submit", token, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	submissionID := decodeBody(t, rec)["submission"].(map[string]interface{})["id"].(string)

	rec = ts.do(t, http.MethodPut, "/api/submissions/"+submissionID+"/review", adminToken, map[string]string{
		"status": "NOT_A_STATUS",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/submissions/"+submissionID+"/review", adminToken, map[string]string{
		"status": store.SubmissionCompleted, "feedback": "great work",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reviewed := decodeBody(t, rec)["submission"].(map[string]interface{})
	require.Equal(t, store.SubmissionCompleted, reviewed["status"])

	rec = ts.do(t, http.MethodGet, "/api/admin/analytics", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	analytics := decodeBody(t, rec)["analytics"].(map[string]interface{})
	require.Equal(t, float64(2), analytics["total_users"])
	require.Equal(t, float64(1), analytics["total_projects"])
}

// parseSSEEvents splits an SSE body into its decoded data payloads.
func parseSSEEvents(t *testing.T, body string) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestChatStreamsChunksThenDone(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	rec := ts.do(t, http.MethodPost, "/api/assistant/chat", token, map[string]string{
		"message": "What does a software engineer do?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSEEvents(t, rec.Body.String())
	require.Len(t, events, 3)
	require.Equal(t, "chunk", events[0]["type"])
	require.Equal(t, "Hello", events[0]["content"])
	require.Equal(t, "chunk", events[1]["type"])
	require.Equal(t, "done", events[2]["type"])

	sessionID := events[2]["sessionId"].(string)
	require.NotEmpty(t, sessionID)

	// Continuing with the returned session id reuses it.
	rec = ts.do(t, http.MethodPost, "/api/assistant/chat", token, map[string]string{
		"message":    "Tell me more",
		"session_id": sessionID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	events = parseSSEEvents(t, rec.Body.String())
	require.Equal(t, sessionID, events[len(events)-1]["sessionId"])

	rec = ts.do(t, http.MethodGet, "/api/assistant/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decodeBody(t, rec)["logs"].([]interface{})
	require.Len(t, logs, 1)
	session := logs[0].(map[string]interface{})
	require.Len(t, session["turns"].([]interface{}), 4)
}

func TestChatEmptyMessageRejectedBeforeStreaming(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	rec := ts.do(t, http.MethodPost, "/api/assistant/chat", token, map[string]string{"message": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestChatUpstreamFailureReturnsStatusCode(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")
	ts.relay.err = apperr.Unavailable("Assistant is temporarily unavailable", fmt.Errorf("connection refused"))

	rec := ts.do(t, http.MethodPost, "/api/assistant/chat", token, map[string]string{"message": "hi"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	// Nothing persisted for the failed exchange.
	rec = ts.do(t, http.MethodGet, "/api/assistant/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, decodeBody(t, rec)["logs"])
}

func TestClearSessionIdempotent(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	rec := ts.do(t, http.MethodPost, "/api/assistant/chat", token, map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	events := parseSSEEvents(t, rec.Body.String())
	sessionID := events[len(events)-1]["sessionId"].(string)

	rec = ts.do(t, http.MethodDelete, "/api/assistant/session/"+sessionID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Clearing again still succeeds.
	rec = ts.do(t, http.MethodDelete, "/api/assistant/session/"+sessionID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// And the session is gone from history.
	rec = ts.do(t, http.MethodGet, "/api/assistant/history", token, nil)
	require.Nil(t, decodeBody(t, rec)["logs"])
}
