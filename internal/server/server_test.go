package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/auth"
	"taskboard/internal/kanban"
	"taskboard/internal/server"
	"taskboard/internal/storage/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "taskboard.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	srv := server.New(kanban.New(store, tokens, nil), nil, server.Options{
		CORSOrigins: []string{"*"},
		Ping:        store.Ping,
	})
	return &testAPI{t: t, router: srv.Engine()}
}

// do sends body (raw string or a value to encode) and decodes the response
// into out when out is non-nil.
func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type session struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

type detail struct {
	Detail string `json:"detail"`
}

func (a *testAPI) register(email, fullname string) session {
	a.t.Helper()
	var s session
	code := a.do(http.MethodPost, "/api/registration/", "", map[string]string{
		"fullname":          fullname,
		"email":             email,
		"password":          "password1",
		"repeated_password": "password1",
	}, &s)
	require.Equal(a.t, http.StatusCreated, code)
	return s
}

type boardJSON struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	OwnerID            int64   `json:"owner_id"`
	MemberCount        int     `json:"member_count"`
	TicketCount        int     `json:"ticket_count"`
	TasksToDoCount     int     `json:"tasks_to_do_count"`
	TasksHighPrioCount int     `json:"tasks_high_prio_count"`
	DueDate            *string `json:"due_date"`
}

type userJSON struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

type taskJSON struct {
	ID            int64     `json:"id"`
	Board         int64     `json:"board"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Assignee      *userJSON `json:"assignee"`
	Reviewer      *userJSON `json:"reviewer"`
	DueDate       *string   `json:"due_date"`
	CommentsCount int       `json:"comments_count"`
}

type commentJSON struct {
	ID      int64  `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/healthz", "", nil, &body))
	assert.Equal(t, "ok", body["status"])

	var nf detail
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/nothing-here/", "", nil, &nf))
	assert.Equal(t, "endpoint not found", nf.Detail)
}

func TestRegistrationAndLogin(t *testing.T) {
	api := newTestAPI(t)

	alice := api.register("alice@example.com", "Alice Smith")
	assert.NotEmpty(t, alice.Token)
	assert.Equal(t, "Alice Smith", alice.Fullname)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.NotZero(t, alice.UserID)

	var errBody detail
	code := api.do(http.MethodPost, "/api/registration/", "", map[string]string{
		"fullname": "Other", "email": "alice@example.com",
		"password": "password1", "repeated_password": "password1",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, errBody.Detail)

	code = api.do(http.MethodPost, "/api/registration/", "", map[string]string{
		"fullname": "Bob", "email": "bob@example.com",
		"password": "password1", "repeated_password": "password2",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, errBody.Detail, "repeated_password")

	var logged session
	code = api.do(http.MethodPost, "/api/login/", "", map[string]string{
		"email": "alice@example.com", "password": "password1",
	}, &logged)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, alice.UserID, logged.UserID)
	assert.NotEmpty(t, logged.Token)

	code = api.do(http.MethodPost, "/api/login/", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-pass",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)

	code = api.do(http.MethodPost, "/api/login/", "", `{"email": alice}`, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.True(t, strings.HasPrefix(errBody.Detail, "Invalid JSON"), errBody.Detail)
}

func TestAuthenticationRequired(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com", "Alice")

	var errBody detail
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/boards/", "", nil, &errBody))
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/boards/", "garbage", nil, &errBody))

	req := httptest.NewRequest(http.MethodGet, "/api/boards/", nil)
	req.Header.Set("Authorization", "Token "+alice.Token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestEmailCheck(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com", "Alice")
	api.register("bob@example.com", "Bob")

	var found userJSON
	code := api.do(http.MethodGet, "/api/email-check/?email=bob@example.com", alice.Token, nil, &found)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Bob", found.Fullname)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/email-check/?email=carol@example.com", alice.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/email-check/", alice.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/email-check/?email=not-an-email", alice.Token, nil, nil))
}

func TestBoardLifecycle(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com", "Alice")
	bob := api.register("bob@example.com", "Bob")
	carol := api.register("carol@example.com", "Carol")

	var board boardJSON
	code := api.do(http.MethodPost, "/api/boards/", alice.Token, map[string]any{
		"title":    "Sprint 1",
		"members":  []int64{bob.UserID},
		"due_date": "2026-12-31",
	}, &board)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, alice.UserID, board.OwnerID)
	assert.Equal(t, 2, board.MemberCount)
	assert.Zero(t, board.TicketCount)
	require.NotNil(t, board.DueDate)
	assert.Equal(t, "2026-12-31", *board.DueDate)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/boards/", alice.Token, map[string]any{"title": "  "}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/boards/", alice.Token, map[string]any{"title": "X", "members": []int64{9999}}, nil))

	var boards []boardJSON
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/boards/", bob.Token, nil, &boards))
	require.Len(t, boards, 1)
	assert.Equal(t, board.ID, boards[0].ID)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/boards/", carol.Token, nil, &boards))
	assert.Empty(t, boards)

	path := fmt.Sprintf("/api/boards/%d/", board.ID)
	var full struct {
		ID      int64      `json:"id"`
		OwnerID int64      `json:"owner_id"`
		Members []userJSON `json:"members"`
		Tasks   []taskJSON `json:"tasks"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, path, bob.Token, nil, &full))
	assert.Len(t, full.Members, 2)
	assert.NotNil(t, full.Tasks)
	assert.Empty(t, full.Tasks)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, path, carol.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/boards/9999/", alice.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/boards/abc/", alice.Token, nil, nil))

	var patched struct {
		ID          int64      `json:"id"`
		Title       string     `json:"title"`
		OwnerData   userJSON   `json:"owner_data"`
		MembersData []userJSON `json:"members_data"`
	}
	code = api.do(http.MethodPatch, path, bob.Token, map[string]any{
		"title":   "Sprint 1b",
		"members": []int64{carol.UserID},
	}, &patched)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sprint 1b", patched.Title)
	assert.Equal(t, alice.UserID, patched.OwnerData.ID)
	ids := make([]int64, 0, len(patched.MembersData))
	for _, m := range patched.MembersData {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []int64{alice.UserID, carol.UserID}, ids)

	// bob was removed from the board
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, path, bob.Token, nil, nil))

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, path, carol.Token, nil, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, path, alice.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, alice.Token, nil, nil))
}

func TestTaskLifecycle(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com", "Alice")
	bob := api.register("bob@example.com", "Bob")
	carol := api.register("carol@example.com", "Carol")

	var board boardJSON
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/boards/", alice.Token, map[string]any{
		"title": "Sprint", "members": []int64{bob.UserID},
	}, &board))

	var task taskJSON
	code := api.do(http.MethodPost, "/api/tasks/", bob.Token, map[string]any{
		"board":       board.ID,
		"title":       "Write docs",
		"description": "API docs",
		"priority":    "high",
		"assignee_id": bob.UserID,
		"reviewer_id": alice.UserID,
		"due_date":    "2026-11-01",
	}, &task)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, board.ID, task.Board)
	assert.Equal(t, "to-do", task.Status)
	assert.Equal(t, "high", task.Priority)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, bob.UserID, task.Assignee.ID)
	require.NotNil(t, task.Reviewer)
	assert.Equal(t, alice.UserID, task.Reviewer.ID)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/tasks/", bob.Token, map[string]any{"title": "no board"}, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/tasks/", bob.Token, map[string]any{"board": 9999, "title": "x"}, nil))
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/tasks/", carol.Token, map[string]any{"board": board.ID, "title": "x"}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/tasks/", bob.Token, map[string]any{
		"board": board.ID, "title": "x", "assignee_id": carol.UserID,
	}, nil))
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/tasks/", bob.Token, map[string]any{
		"board": board.ID, "title": "x", "status": "blocked",
	}, nil))

	var boards []boardJSON
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/boards/", alice.Token, nil, &boards))
	require.Len(t, boards, 1)
	assert.Equal(t, 1, boards[0].TicketCount)
	assert.Equal(t, 1, boards[0].TasksToDoCount)
	assert.Equal(t, 1, boards[0].TasksHighPrioCount)

	var list []taskJSON
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/tasks/assigned-to-me/", bob.Token, nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, task.ID, list[0].ID)
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/tasks/reviewing/", alice.Token, nil, &list))
	require.Len(t, list, 1)
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/tasks/reviewing/", bob.Token, nil, &list))
	assert.Empty(t, list)

	path := fmt.Sprintf("/api/tasks/%d/", task.ID)
	var updated taskJSON
	code = api.do(http.MethodPatch, path, alice.Token, map[string]any{
		"status":      "in-progress",
		"priority":    "low",
		"reviewer_id": nil,
		"due_date":    "",
	}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "in-progress", updated.Status)
	assert.Equal(t, "low", updated.Priority)
	assert.Nil(t, updated.Reviewer)
	assert.Nil(t, updated.DueDate)
	require.NotNil(t, updated.Assignee)
	assert.Equal(t, "Write docs", updated.Title)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/boards/", alice.Token, nil, &boards))
	assert.Equal(t, 0, boards[0].TasksToDoCount)
	assert.Equal(t, 0, boards[0].TasksHighPrioCount)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPatch, path, carol.Token, map[string]any{"title": "hijack"}, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/tasks/9999/", alice.Token, nil, nil))

	var fetched taskJSON
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, path, bob.Token, nil, &fetched))
	assert.Equal(t, "API docs", fetched.Description)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, path, carol.Token, nil, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, path, alice.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, alice.Token, nil, nil))

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/boards/", alice.Token, nil, &boards))
	assert.Equal(t, 0, boards[0].TicketCount)
}

func TestComments(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com", "Alice")
	bob := api.register("bob@example.com", "Bob Builder")
	carol := api.register("carol@example.com", "Carol")

	var board boardJSON
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/boards/", alice.Token, map[string]any{
		"title": "Sprint", "members": []int64{bob.UserID},
	}, &board))
	var task taskJSON
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/tasks/", alice.Token, map[string]any{
		"board": board.ID, "title": "Review",
	}, &task))

	path := fmt.Sprintf("/api/tasks/%d/comments/", task.ID)
	var comment commentJSON
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, path, bob.Token, map[string]string{"content": "Looks good"}, &comment))
	assert.Equal(t, "Bob Builder", comment.Author)
	assert.Equal(t, "Looks good", comment.Content)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, path, bob.Token, map[string]string{"content": "   "}, nil))
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, path, carol.Token, map[string]string{"content": "hi"}, nil))
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, path, carol.Token, nil, nil))

	var comments []commentJSON
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, path, alice.Token, nil, &comments))
	require.Len(t, comments, 1)

	var fetched taskJSON
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d/", task.ID), alice.Token, nil, &fetched))
	assert.Equal(t, 1, fetched.CommentsCount)

	commentPath := fmt.Sprintf("%s%d/", path, comment.ID)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, commentPath, alice.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, fmt.Sprintf("%s%d/", path, 9999), bob.Token, nil, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, commentPath, bob.Token, nil, nil))

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, path, alice.Token, nil, &comments))
	assert.Empty(t, comments)
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d/", task.ID), alice.Token, nil, &fetched))
	assert.Equal(t, 0, fetched.CommentsCount)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/boards/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUndecodableBodyIsNotEchoed(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice@example.com", "Alice")

	var errBody detail
	code := api.do(http.MethodPost, "/api/boards/", alice.Token, map[string]any{
		"title":    "Sprint",
		"due_date": "31/12/2026",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid request body: check field types and formats (dates use YYYY-MM-DD)", errBody.Detail)
	assert.NotContains(t, errBody.Detail, "31/12/2026")
}
