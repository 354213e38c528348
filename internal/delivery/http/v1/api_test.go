package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/auth"
	"taskboard/internal/repository/memory"
	"taskboard/internal/services"
)

type testServer struct {
	router *gin.Engine
	tokens auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	tokens := auth.NewTokenService("taskboard", []byte("test-secret"), time.Hour)

	authService := services.NewAuthService(zerolog.Nop(), store, auth.NewHasher(nil), tokens)
	taskService := services.NewTaskService(zerolog.Nop(), store)

	handler := New(zerolog.Nop(), authService, taskService, tokens, store, 5, 15*time.Minute)

	router := gin.New()
	RegisterRoutes(router, handler)

	return &testServer{router: router, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := make(map[string]any)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

// register creates a user through the API and returns its token.
func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()

	recorder := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (s *testServer) createTask(t *testing.T, token string, fields gin.H) map[string]any {
	t.Helper()

	recorder := s.do(t, http.MethodPost, "/api/tasks", token, fields)
	require.Equal(t, http.StatusCreated, recorder.Code)
	return decodeBody(t, recorder)
}

func TestRegister(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.NotEmpty(t, user["id"])
	assert.NotEmpty(t, body["token"])
}

func TestRegister_DuplicateUsername(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice")

	recorder := server.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"password": "otherpassword",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, decodeBody(t, recorder)["message"], "taken")
}

func TestRegister_Validation(t *testing.T) {
	server := newTestServer(t)

	recorder := server.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "ab",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeBody(t, recorder)
	assert.NotEmpty(t, body["errors"])
}

func TestLogin(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice")

	recorder := server.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	token, _ := decodeBody(t, recorder)["token"].(string)
	require.NotEmpty(t, token)

	// The issued token passes the identity gate.
	listRecorder := server.do(t, http.MethodGet, "/api/tasks", token, nil)
	assert.Equal(t, http.StatusOK, listRecorder.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice")

	recorder := server.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	server := newTestServer(t)
	server.register(t, "alice")

	for i := 0; i < 5; i++ {
		recorder := server.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "alice",
			"password": "wrongpassword",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	}

	recorder := server.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
}

func TestIdentityGate(t *testing.T) {
	server := newTestServer(t)

	// No token at all.
	recorder := server.do(t, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Garbage token.
	recorder = server.do(t, http.MethodGet, "/api/tasks", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// A valid token for a user that does not exist.
	ghostToken, err := server.tokens.Issue("ghost")
	require.NoError(t, err)
	recorder = server.do(t, http.MethodGet, "/api/tasks", ghostToken, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreateAndListTasks(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	created := server.createTask(t, token, gin.H{
		"title":    "Buy milk",
		"priority": "High",
		"category": "errands",
	})
	assert.Equal(t, "Buy milk", created["title"])
	assert.Equal(t, false, created["completed"])
	assert.Equal(t, false, created["archived"])

	server.createTask(t, token, gin.H{"title": "Buy bread"})

	recorder := server.do(t, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	tasks, ok := decodeBody(t, recorder)["tasks"].([]any)
	require.True(t, ok)
	require.Len(t, tasks, 2)

	// Newest first.
	newest, _ := tasks[0].(map[string]any)
	assert.Equal(t, "Buy bread", newest["title"])
}

func TestCreateTask_Validation(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	recorder := server.do(t, http.MethodPost, "/api/tasks", token, gin.H{
		"description": "no title here",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.NotEmpty(t, decodeBody(t, recorder)["errors"])

	recorder = server.do(t, http.MethodPost, "/api/tasks", token, gin.H{
		"title":    "ok",
		"priority": "Urgent",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateTask(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	created := server.createTask(t, token, gin.H{"title": "before"})
	taskID, _ := created["id"].(string)

	recorder := server.do(t, http.MethodPut, "/api/tasks/"+taskID, token, gin.H{
		"title":   "after",
		"starred": true,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "after", body["title"])
	assert.Equal(t, true, body["starred"])
}

func TestUpdateTask_NotFound(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	recorder := server.do(t, http.MethodPut, "/api/tasks/no-such-id", token, gin.H{"title": "x"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCrossOwnerAccessIsForbidden(t *testing.T) {
	server := newTestServer(t)
	aliceToken := server.register(t, "alice")
	bobToken := server.register(t, "bob")

	created := server.createTask(t, bobToken, gin.H{"title": "bob's task"})
	taskID, _ := created["id"].(string)

	for _, attempt := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPut, "/api/tasks/" + taskID, gin.H{"title": "stolen"}},
		{http.MethodDelete, "/api/tasks/" + taskID, nil},
		{http.MethodPost, "/api/tasks/" + taskID + "/complete", nil},
		{http.MethodPost, "/api/tasks/" + taskID + "/star", nil},
		{http.MethodPost, "/api/tasks/" + taskID + "/duplicate", nil},
	} {
		recorder := server.do(t, attempt.method, attempt.path, aliceToken, attempt.body)
		assert.Equalf(t, http.StatusForbidden, recorder.Code, "%s %s", attempt.method, attempt.path)
	}
}

func TestToggleCompleteArchivesTask(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	created := server.createTask(t, token, gin.H{"title": "finish me"})
	taskID, _ := created["id"].(string)

	recorder := server.do(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, true, body["archived"])

	// The archived task rejects a field update but accepts a star.
	recorder = server.do(t, http.MethodPut, "/api/tasks/"+taskID, token, gin.H{"title": "nope"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = server.do(t, http.MethodPost, "/api/tasks/"+taskID+"/star", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestDuplicateTask(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	created := server.createTask(t, token, gin.H{"title": "Buy milk", "starred": true})
	taskID, _ := created["id"].(string)

	recorder := server.do(t, http.MethodPost, "/api/tasks/"+taskID+"/duplicate", token, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "Buy milk (copy)", body["title"])
	assert.NotEqual(t, taskID, body["id"])
	assert.Equal(t, false, body["completed"])
	assert.Equal(t, false, body["starred"])
}

func TestDeleteTask(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	created := server.createTask(t, token, gin.H{"title": "delete me"})
	taskID, _ := created["id"].(string)

	recorder := server.do(t, http.MethodDelete, "/api/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = server.do(t, http.MethodDelete, "/api/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestBulkDelete(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	first := server.createTask(t, token, gin.H{"title": "one"})
	second := server.createTask(t, token, gin.H{"title": "two"})

	recorder := server.do(t, http.MethodDelete, "/api/tasks", token, gin.H{
		"ids": []any{first["id"], second["id"]},
	})
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	listRecorder := server.do(t, http.MethodGet, "/api/tasks", token, nil)
	tasks, _ := decodeBody(t, listRecorder)["tasks"].([]any)
	assert.Empty(t, tasks)
}

func TestBulkDelete_ForeignIDRejectsWholeBatch(t *testing.T) {
	server := newTestServer(t)
	aliceToken := server.register(t, "alice")
	bobToken := server.register(t, "bob")

	mine := server.createTask(t, aliceToken, gin.H{"title": "mine"})
	theirs := server.createTask(t, bobToken, gin.H{"title": "theirs"})

	recorder := server.do(t, http.MethodDelete, "/api/tasks", aliceToken, gin.H{
		"ids": []any{mine["id"], theirs["id"]},
	})
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// Neither task was deleted.
	listRecorder := server.do(t, http.MethodGet, "/api/tasks", aliceToken, nil)
	tasks, _ := decodeBody(t, listRecorder)["tasks"].([]any)
	assert.Len(t, tasks, 1)

	listRecorder = server.do(t, http.MethodGet, "/api/tasks", bobToken, nil)
	tasks, _ = decodeBody(t, listRecorder)["tasks"].([]any)
	assert.Len(t, tasks, 1)
}

func TestBulkDelete_EmptyIDs(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	recorder := server.do(t, http.MethodDelete, "/api/tasks", token, gin.H{"ids": []any{}})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSearchTasks(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	server.createTask(t, token, gin.H{"title": "Buy milk"})
	server.createTask(t, token, gin.H{"title": "Groceries", "description": "get milk"})
	server.createTask(t, token, gin.H{"title": "Buy bread"})

	recorder := server.do(t, http.MethodGet, "/api/tasks/search?q=milk", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	tasks, _ := body["tasks"].([]any)
	assert.Len(t, tasks, 2)

	pagination, _ := body["pagination"].(map[string]any)
	require.NotNil(t, pagination)
	assert.Equal(t, float64(2), pagination["total"])
}

func TestSearchTasks_Pagination(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	for i := 0; i < 15; i++ {
		server.createTask(t, token, gin.H{"title": fmt.Sprintf("task %d", i)})
	}

	recorder := server.do(t, http.MethodGet, "/api/tasks/search?page=1&limit=10", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	tasks, _ := body["tasks"].([]any)
	assert.Len(t, tasks, 10)

	pagination, _ := body["pagination"].(map[string]any)
	assert.Equal(t, float64(15), pagination["total"])
	assert.Equal(t, float64(2), pagination["pages"])

	recorder = server.do(t, http.MethodGet, "/api/tasks/search?page=2&limit=10", token, nil)
	body = decodeBody(t, recorder)
	tasks, _ = body["tasks"].([]any)
	assert.Len(t, tasks, 5)
}

func TestSearchTasks_NonNumericPaginationDefaults(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	server.createTask(t, token, gin.H{"title": "only one"})

	recorder := server.do(t, http.MethodGet, "/api/tasks/search?page=abc&limit=xyz", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	pagination, _ := decodeBody(t, recorder)["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(10), pagination["limit"])
}

func TestSearchTasks_CompletedFilter(t *testing.T) {
	server := newTestServer(t)
	token := server.register(t, "alice")

	created := server.createTask(t, token, gin.H{"title": "done"})
	taskID, _ := created["id"].(string)
	server.createTask(t, token, gin.H{"title": "pending"})

	recorder := server.do(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = server.do(t, http.MethodGet, "/api/tasks/search?completed=true", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	tasks, _ := decodeBody(t, recorder)["tasks"].([]any)
	require.Len(t, tasks, 1)
	task, _ := tasks[0].(map[string]any)
	assert.Equal(t, "done", task["title"])
}
