package api

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository/memory"
	"alcyxob/exercise-tracker/internal/repository/repotest"
	"alcyxob/exercise-tracker/internal/service"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the real routes over an in-memory store.
func newTestRouter(t *testing.T, auth service.AuthService) (*gin.Engine, *repotest.FakeClock) {
	t.Helper()
	clock := repotest.NewFakeClock(repotest.Start)
	repo := memory.NewMemoryExerciseRepository(clock.Now)
	if auth == nil {
		auth = service.NewAuthService("", "", 0, nil)
	}
	router := gin.New()
	SetupRoutes(router, auth, service.NewExerciseService(repo, clock.Now))
	return router, clock
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rec.Body.String())
	}
	return v
}

// TestExerciseLifecycle walks create, toggle twice and delete through the HTTP API.
func TestExerciseLifecycle(t *testing.T) {
	router, clock := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/exercises", map[string]any{
		"name":        "Push-ups",
		"description": "Classic upper body exercise",
		"category":    "Strength",
		"difficulty":  "Beginner",
		"duration":    10,
		"sets":        3,
		"reps":        12,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	created := decode[ExerciseResponse](t, rec)
	if created.ID == "" || created.Completed || created.Status != domain.StatusPending || created.CompletedDate != "" {
		t.Fatalf("unexpected created record: %+v", created)
	}
	if created.Sets == nil || *created.Sets != 3 {
		t.Errorf("sets = %v, want 3", created.Sets)
	}

	list := decode[[]ExerciseResponse](t, doRequest(t, router, http.MethodGet, "/api/v1/exercises", nil, nil))
	if len(list) != 1 {
		t.Fatalf("list len = %d, want 1", len(list))
	}
	done := decode[[]ExerciseResponse](t, doRequest(t, router, http.MethodGet, "/api/v1/exercises/completed", nil, nil))
	if len(done) != 0 {
		t.Fatalf("completed len = %d, want 0", len(done))
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/exercises/"+created.ID+"/toggle", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	toggled := decode[ExerciseResponse](t, rec)
	if !toggled.Completed || toggled.CompletedDate != domain.CalendarDate(clock.Now()) {
		t.Errorf("unexpected toggled record: %+v", toggled)
	}
	done = decode[[]ExerciseResponse](t, doRequest(t, router, http.MethodGet, "/api/v1/exercises/completed", nil, nil))
	if len(done) != 1 {
		t.Fatalf("completed len = %d, want 1", len(done))
	}

	rec = doRequest(t, router, http.MethodPost, "/api/v1/exercises/"+created.ID+"/toggle", nil, nil)
	if strings.Contains(rec.Body.String(), "completedDate") {
		t.Errorf("pending record body mentions completedDate: %s", rec.Body)
	}
	if back := decode[ExerciseResponse](t, rec); back.Completed || back.CompletedDate != "" {
		t.Errorf("unexpected record after second toggle: %+v", back)
	}

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/exercises/"+created.ID, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	list = decode[[]ExerciseResponse](t, doRequest(t, router, http.MethodGet, "/api/v1/exercises", nil, nil))
	if len(list) != 0 {
		t.Errorf("list len = %d, want 0", len(list))
	}
}

func TestPendingRecordOmitsCompletedDate(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/exercises", map[string]any{"name": "Yoga", "duration": 20}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "completedDate") {
		t.Errorf("pending record body mentions completedDate: %s", rec.Body)
	}
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	for _, path := range []string{"/api/v1/exercises", "/api/v1/exercises/completed"} {
		rec := doRequest(t, router, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("%s body = %q, want []", path, got)
		}
	}
}

func TestCreateExerciseRejectsInvalidInput(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"duration": 10}},
		{"blank name", map[string]any{"name": "   ", "duration": 10}},
		{"zero duration", map[string]any{"name": "Plank", "duration": 0}},
		{"bad difficulty", map[string]any{"name": "Plank", "duration": 5, "difficulty": "Expert"}},
		{"negative calories", map[string]any{"name": "Plank", "duration": 5, "calories": -10}},
		{"not json", "just a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/exercises", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
			}
		})
	}

	list := decode[[]ExerciseResponse](t, doRequest(t, router, http.MethodGet, "/api/v1/exercises", nil, nil))
	if len(list) != 0 {
		t.Errorf("rejected requests created %d records", len(list))
	}
}

func TestUnknownIDs(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	if rec := doRequest(t, router, http.MethodGet, "/api/v1/exercises/missing", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET status = %d, want 404", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodPost, "/api/v1/exercises/missing/toggle", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("toggle status = %d, want 404", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodDelete, "/api/v1/exercises/missing", nil, nil); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", rec.Code)
	}
}

func TestNewestFirstAndSummary(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	var ids []string
	for _, name := range []string{"First", "Second", "Third"} {
		rec := doRequest(t, router, http.MethodPost, "/api/v1/exercises", map[string]any{"name": name, "duration": 10, "calories": 50}, nil)
		ids = append(ids, decode[ExerciseResponse](t, rec).ID)
	}
	doRequest(t, router, http.MethodPost, "/api/v1/exercises/"+ids[0]+"/toggle", nil, nil)

	list := decode[[]ExerciseResponse](t, doRequest(t, router, http.MethodGet, "/api/v1/exercises", nil, nil))
	if len(list) != 3 || list[0].Name != "Third" || list[2].Name != "First" {
		t.Fatalf("unexpected order: %+v", list)
	}

	got := decode[domain.Summary](t, doRequest(t, router, http.MethodGet, "/api/v1/exercises/summary", nil, nil))
	want := domain.Summary{Total: 3, Completed: 1, Pending: 2, TotalMinutes: 30, CompletedMinutes: 10, CompletedCalories: 50}
	if got != want {
		t.Errorf("summary = %+v, want %+v", got, want)
	}

	one := decode[ExerciseResponse](t, doRequest(t, router, http.MethodGet, "/api/v1/exercises/"+ids[1], nil, nil))
	if one.Name != "Second" {
		t.Errorf("GET by id name = %q, want Second", one.Name)
	}
}

func TestPing(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := doRequest(t, router, http.MethodGet, "/ping", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "pong") {
		t.Errorf("ping = %d %s", rec.Code, rec.Body)
	}
}

func TestAuthFlow(t *testing.T) {
	hash, err := service.HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	router, _ := newTestRouter(t, service.NewAuthService("jwt-secret", hash, time.Hour, nil))

	if rec := doRequest(t, router, http.MethodGet, "/api/v1/exercises", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
	bad := http.Header{"Authorization": {"Token abc"}}
	if rec := doRequest(t, router, http.MethodGet, "/api/v1/exercises", nil, bad); rec.Code != http.StatusUnauthorized {
		t.Errorf("malformed header status = %d, want 401", rec.Code)
	}
	forged := http.Header{"Authorization": {"Bearer not.a.token"}}
	if rec := doRequest(t, router, http.MethodGet, "/api/v1/exercises", nil, forged); rec.Code != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", rec.Code)
	}

	if rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "wrong"}, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{}, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing password status = %d, want 400", rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "s3cret"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	login := decode[LoginResponse](t, rec)
	if login.Token == "" {
		t.Fatal("empty token")
	}

	authed := http.Header{"Authorization": {"Bearer " + login.Token}}
	if rec := doRequest(t, router, http.MethodGet, "/api/v1/exercises", nil, authed); rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rec.Code)
	}
	// /ping stays public.
	if rec := doRequest(t, router, http.MethodGet, "/ping", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("ping status = %d, want 200", rec.Code)
	}
}

func TestLoginWhenAuthDisabled(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{"password": "x"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	SetupRoutes(router, service.NewAuthService("", "", 0, nil), service.NewExerciseService(memory.NewMemoryExerciseRepository(nil), nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/exercises", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/exercises", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign origin status = %d, want 403", rec.Code)
	}
}
