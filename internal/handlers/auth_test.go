package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/placement-tracker/apiserver/internal/services"
	"github.com/placement-tracker/apiserver/internal/store"
	"github.com/placement-tracker/apiserver/types"
)

const (
	testJWTSecret = "test-secret"
	testAdminKey  = "letmein"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmailAndRole(_ context.Context, email, role string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email && user.Role == role {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, &store.DuplicateError{Field: "email"}
		}
		if existing.Username == user.Username {
			return types.User{}, &store.DuplicateError{Field: "username"}
		}
	}
	r.nextID++
	user.ID = r.nextID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]types.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func newAuthRouter(repo *fakeUserRepo) *chi.Mux {
	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, services.NewUserService(repo), testJWTSecret, testAdminKey)
	})
	return router
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupBody(email, username string) map[string]string {
	return map[string]string{
		"email":     email,
		"username":  username,
		"password":  "hunter22",
		"phoneE164": "+15550001111",
	}
}

func TestSignupAndLogin(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", signupBody("a@example.com", "alice"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var signup SignupResponse
	if err := json.NewDecoder(rec.Body).Decode(&signup); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	if !signup.OK || signup.UserID < 1 {
		t.Fatalf("unexpected signup response: %+v", signup)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "a@example.com",
		"password": "hunter22",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var login TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("expected token in login response")
	}

	identity, err := parseToken(login.Token, []byte(testJWTSecret))
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if identity.UserID != signup.UserID || identity.Role != types.RoleUser {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestSignupMissingFields(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	body := signupBody("a@example.com", "alice")
	delete(body, "phoneE164")
	rec := doJSON(t, router, http.MethodPost, "/auth/signup", body, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSignupDuplicateEmailAndUsername(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", signupBody("a@example.com", "alice"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first signup status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/signup", signupBody("a@example.com", "alice2"), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Email already in use") {
		t.Fatalf("duplicate email body = %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/signup", signupBody("b@example.com", "alice"), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate username status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Username already in use") {
		t.Fatalf("duplicate username body = %s", rec.Body.String())
	}
}

func TestAdminSignupKeyGate(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	body := signupBody("root@example.com", "root")
	rec := doJSON(t, router, http.MethodPost, "/auth/admin/signup", body, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing adminKey status = %d, want 400", rec.Code)
	}

	body["adminKey"] = "wrong"
	rec = doJSON(t, router, http.MethodPost, "/auth/admin/signup", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong adminKey status = %d, want 401", rec.Code)
	}

	body["adminKey"] = testAdminKey
	rec = doJSON(t, router, http.MethodPost, "/auth/admin/signup", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin signup status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// The created account authenticates through the admin login path.
	rec = doJSON(t, router, http.MethodPost, "/auth/admin/login", map[string]string{
		"email":    "root@example.com",
		"password": "hunter22",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAdminLoginRejectsRegularCredential(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", signupBody("a@example.com", "alice"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/admin/login", map[string]string{
		"email":    "a@example.com",
		"password": "hunter22",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("admin login with user credential status = %d, want 401", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", signupBody("a@example.com", "alice"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "a@example.com",
		"password": "wrong",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", rec.Code)
	}
}

func protectedRouter() *chi.Mux {
	router := chi.NewRouter()
	router.With(RequireAuth(testJWTSecret)).Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, OKResponse{OK: true})
	})
	router.With(RequireAuth(testJWTSecret), RequireAdmin).Get("/admin-only", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, OKResponse{OK: true})
	})
	return router
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	router := protectedRouter()

	token, err := issueToken(7, types.RoleUser, []byte(testJWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/protected", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuthRejectsTamperedToken(t *testing.T) {
	router := protectedRouter()

	token, err := issueToken(7, types.RoleUser, []byte(testJWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// Flip a byte in the signature segment.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	rec := doJSON(t, router, http.MethodGet, "/protected", nil, string(tampered))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	router := protectedRouter()

	token, err := issueToken(7, types.RoleUser, []byte(testJWTSecret), -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/protected", nil, token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	router := protectedRouter()

	rec := doJSON(t, router, http.MethodGet, "/protected", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAdminRejectsRegularRole(t *testing.T) {
	router := protectedRouter()

	token, err := issueToken(7, types.RoleUser, []byte(testJWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/admin-only", nil, token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	adminToken, err := issueToken(8, types.RoleAdmin, []byte(testJWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	rec = doJSON(t, router, http.MethodGet, "/admin-only", nil, adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}
