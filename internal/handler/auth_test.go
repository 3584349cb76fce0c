package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/handler"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// --- Mock store ---

type mockAuthStore struct {
	byPhone map[string]database.Profile
	byEmail map[string]database.Profile
	byID    map[uuid.UUID]database.Profile
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{
		byPhone: make(map[string]database.Profile),
		byEmail: make(map[string]database.Profile),
		byID:    make(map[uuid.UUID]database.Profile),
	}
}

func (m *mockAuthStore) addProfile(p database.Profile) {
	if p.Phone.Valid {
		m.byPhone[p.Phone.String] = p
	}
	if p.Email.Valid {
		m.byEmail[p.Email.String] = p
	}
	m.byID[p.ID] = p
}

func (m *mockAuthStore) GetProfileByPhone(_ context.Context, phone string) (database.Profile, error) {
	p, ok := m.byPhone[phone]
	if !ok {
		return database.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockAuthStore) GetProfileByEmail(_ context.Context, email string) (database.Profile, error) {
	p, ok := m.byEmail[email]
	if !ok {
		return database.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockAuthStore) GetProfile(_ context.Context, id uuid.UUID) (database.Profile, error) {
	p, ok := m.byID[id]
	if !ok {
		return database.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockAuthStore) CreateProfile(_ context.Context, arg database.CreateProfileParams) (database.Profile, error) {
	p := database.Profile{
		ID:             uuid.New(),
		Phone:          pgtype.Text{String: arg.Phone, Valid: arg.Phone != ""},
		Email:          pgtype.Text{String: arg.Email, Valid: arg.Email != ""},
		FullName:       arg.FullName,
		Role:           arg.Role,
		HashedPassword: arg.HashedPassword,
	}
	m.addProfile(p)
	return p, nil
}

// --- Helpers ---

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func makeTestCustomer(t *testing.T) database.Profile {
	t.Helper()
	return database.Profile{
		ID:             uuid.New(),
		Phone:          pgtype.Text{String: "201001112222", Valid: true},
		FullName:       "Mona Customer",
		Role:           enum.RoleCustomer,
		HashedPassword: hashPassword(t, "correct-password"),
	}
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func newAuthRouter(store handler.AuthStore) http.Handler {
	h := handler.NewAuthHandler(store, testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Register tests ---

func TestRegister_CreatesCustomer(t *testing.T) {
	store := newMockAuthStore()
	r := newAuthRouter(store)

	rr := postJSON(t, r, "/auth/register", map[string]string{
		"full_name": "Mona Customer",
		"phone":     "201001112222",
		"password":  "secret-pass",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["access_token"] == nil || resp["access_token"] == "" {
		t.Error("expected non-empty access_token")
	}
	user, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if user["role"] != enum.RoleCustomer {
		t.Errorf("registered users must be customers, got %v", user["role"])
	}

	stored, err := store.GetProfileByPhone(context.Background(), "201001112222")
	if err != nil {
		t.Fatalf("profile not stored: %v", err)
	}
	if stored.HashedPassword == "secret-pass" {
		t.Error("password must be hashed before storage")
	}
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	r := newAuthRouter(newMockAuthStore())

	rr := postJSON(t, r, "/auth/register", map[string]string{
		"full_name": "Mona",
		"phone":     "201001112222",
		"password":  "12345",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRegister_RequiresFields(t *testing.T) {
	r := newAuthRouter(newMockAuthStore())

	rr := postJSON(t, r, "/auth/register", map[string]string{
		"phone": "201001112222",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Login tests ---

func TestLogin_ValidCredentials(t *testing.T) {
	store := newMockAuthStore()
	store.addProfile(makeTestCustomer(t))
	r := newAuthRouter(store)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"phone":    "201001112222",
		"password": "correct-password",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["access_token"] == nil || resp["access_token"] == "" {
		t.Error("expected non-empty access_token")
	}
	if resp["refresh_token"] == nil || resp["refresh_token"] == "" {
		t.Error("expected non-empty refresh_token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockAuthStore()
	store.addProfile(makeTestCustomer(t))
	r := newAuthRouter(store)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"phone":    "201001112222",
		"password": "wrong-password",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_UnknownPhone(t *testing.T) {
	r := newAuthRouter(newMockAuthStore())

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"phone":    "200000000000",
		"password": "whatever",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- Staff login tests ---

func TestStaffLogin_ByEmail(t *testing.T) {
	store := newMockAuthStore()
	store.addProfile(database.Profile{
		ID:             uuid.New(),
		Phone:          pgtype.Text{String: "201000000002", Valid: true},
		Email:          pgtype.Text{String: "cook@sara-kitchen.com", Valid: true},
		FullName:       "Sara Cook",
		Role:           enum.RoleCook,
		HashedPassword: hashPassword(t, "cook-password"),
	})
	r := newAuthRouter(store)

	rr := postJSON(t, r, "/auth/staff-login", map[string]string{
		"email":    "cook@sara-kitchen.com",
		"password": "cook-password",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	user := decodeResponse(t, rr)["user"].(map[string]interface{})
	if user["role"] != enum.RoleCook {
		t.Errorf("role: got %v, want %s", user["role"], enum.RoleCook)
	}
}

func TestStaffLogin_RejectsCustomerAccount(t *testing.T) {
	store := newMockAuthStore()
	customer := makeTestCustomer(t)
	customer.Email = pgtype.Text{String: "mona@example.com", Valid: true}
	store.addProfile(customer)
	r := newAuthRouter(store)

	rr := postJSON(t, r, "/auth/staff-login", map[string]string{
		"email":    "mona@example.com",
		"password": "correct-password",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- Refresh tests ---

func TestRefresh_IssuesNewTokens(t *testing.T) {
	store := newMockAuthStore()
	profile := makeTestCustomer(t)
	store.addProfile(profile)
	r := newAuthRouter(store)

	login := postJSON(t, r, "/auth/login", map[string]string{
		"phone":    "201001112222",
		"password": "correct-password",
	})
	if login.Code != http.StatusOK {
		t.Fatalf("login failed: %s", login.Body.String())
	}
	refreshToken := decodeResponse(t, login)["refresh_token"].(string)

	rr := postJSON(t, r, "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["access_token"] == nil || resp["access_token"] == "" {
		t.Error("expected new access_token")
	}
}

func TestRefresh_RejectsGarbageToken(t *testing.T) {
	r := newAuthRouter(newMockAuthStore())

	rr := postJSON(t, r, "/auth/refresh", map[string]string{
		"refresh_token": "not-a-jwt",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
