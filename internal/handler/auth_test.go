package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-facility-booking/internal/config"
	"github.com/iliyamo/sports-facility-booking/internal/model"
	"github.com/iliyamo/sports-facility-booking/internal/repository"
	"github.com/iliyamo/sports-facility-booking/internal/utils"
)

// stubUserStore keeps accounts in memory, keyed by normalized email the
// same way the real repository is.
type stubUserStore struct {
	byEmail   map[string]model.User
	byID      map[uint64]model.User
	createErr error
}

func (s *stubUserStore) Create(_ context.Context, name, email, password, role, phone, address string, cost int) (uint64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := uint64(len(s.byID) + 1)
	u := model.User{ID: id, Name: name, Email: strings.ToLower(email), PasswordHash: hash,
		Role: role, Status: model.StatusActive, Phone: phone, Address: address}
	s.byEmail[u.Email] = u
	s.byID[id] = u
	return id, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

// stubTokenStore counts stores/revocations and answers validation with a
// canned result.
type stubTokenStore struct {
	stored      int
	revoked     int
	validateID  uint64
	validateErr error
}

func (s *stubTokenStore) StoreRefresh(context.Context, uint64, string, time.Time) error {
	s.stored++
	return nil
}

func (s *stubTokenStore) ValidateRefresh(context.Context, string) (uint64, error) {
	if s.validateErr != nil {
		return 0, s.validateErr
	}
	return s.validateID, nil
}

func (s *stubTokenStore) RevokeByHash(context.Context, string) error {
	s.revoked++
	return nil
}

func (s *stubTokenStore) RevokeAllForUser(context.Context, uint64) error {
	s.revoked++
	return nil
}

func testAuthHandler(users *stubUserStore, tokens *stubTokenStore) *AuthHandler {
	return NewAuthHandler(config.Config{
		JWTSecret:      "unit-test-secret",
		AccessTTLMin:   5,
		RefreshTTLDays: 7,
		BcryptCost:     4, // min cost keeps the tests fast
	}, users, tokens)
}

func seededUsers(t *testing.T, email, password string) *stubUserStore {
	t.Helper()
	s := &stubUserStore{byEmail: map[string]model.User{}, byID: map[uint64]model.User{}}
	if _, err := s.Create(context.Background(), "Ann", email, password, model.RoleUser, "", "", 4); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return s
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestSignupValidation(t *testing.T) {
	// Validation runs before any repository access.
	h := &AuthHandler{}
	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing email", `{"name":"Ann","password":"pw12345"}`},
		{"missing password", `{"name":"Ann","email":"ann@example.com"}`},
		{"blank name", `{"name":"  ","email":"ann@example.com","password":"pw12345"}`},
		{"unknown role", `{"name":"Ann","email":"ann@example.com","password":"pw12345","role":"owner"}`},
	}
	for _, tc := range cases {
		rec := postJSON(t, h.Signup, "/auth/signup", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
	}
}

func TestLoginValidation(t *testing.T) {
	h := &AuthHandler{}
	for _, body := range []string{`{}`, `{"email":"ann@example.com"}`, `{"password":"pw"}`} {
		rec := postJSON(t, h.Login, "/auth/login", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := testAuthHandler(seededUsers(t, "ann@example.com", "right-horse"), &stubTokenStore{})
	rec := postJSON(t, h.Login, "/auth/login", `{"email":"ann@example.com","password":"wrong-horse"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	h := testAuthHandler(seededUsers(t, "ann@example.com", "right-horse"), &stubTokenStore{})
	rec := postJSON(t, h.Login, "/auth/login", `{"email":"bob@example.com","password":"right-horse"}`)
	// Unknown email and wrong password must be indistinguishable.
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoginSuccessIssuesPair(t *testing.T) {
	tokens := &stubTokenStore{}
	h := testAuthHandler(seededUsers(t, "ann@example.com", "right-horse"), tokens)
	rec := postJSON(t, h.Login, "/auth/login", `{"email":"ann@example.com","password":"right-horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Tokens tokenPair   `json:"tokens"`
		User   userPayload `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Error("token pair incomplete")
	}
	if resp.User.Email != "ann@example.com" {
		t.Errorf("user email = %q, want ann@example.com", resp.User.Email)
	}
	if tokens.stored != 1 {
		t.Errorf("stored refresh tokens = %d, want 1", tokens.stored)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	users := &stubUserStore{byEmail: map[string]model.User{}, byID: map[uint64]model.User{}, createErr: repository.ErrEmailExists}
	h := testAuthHandler(users, &stubTokenStore{})
	rec := postJSON(t, h.Signup, "/auth/signup", `{"name":"Ann","email":"ann@example.com","password":"pw12345"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestSignupNeverReturnsPasswordMaterial(t *testing.T) {
	users := &stubUserStore{byEmail: map[string]model.User{}, byID: map[uint64]model.User{}}
	h := testAuthHandler(users, &stubTokenStore{})
	rec := postJSON(t, h.Signup, "/auth/signup", `{"name":"Ann","email":"ann@example.com","password":"pw12345"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "pw12345") || strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaks password material")
	}
	if u := users.byEmail["ann@example.com"]; u.PasswordHash == "pw12345" {
		t.Error("password persisted as plaintext")
	}
}

func TestRefreshTokenRejectsInvalid(t *testing.T) {
	// Expired, revoked and unknown all surface as ErrRefreshInvalid.
	h := testAuthHandler(seededUsers(t, "ann@example.com", "right-horse"),
		&stubTokenStore{validateErr: repository.ErrRefreshInvalid})
	rec := postJSON(t, h.RefreshToken, "/auth/refresh-token", `{"refresh_token":"deadbeef"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "access_token") {
		t.Error("rejected refresh still produced an access token")
	}
}

func TestRefreshTokenUserGone(t *testing.T) {
	users := &stubUserStore{byEmail: map[string]model.User{}, byID: map[uint64]model.User{}}
	h := testAuthHandler(users, &stubTokenStore{validateID: 42})
	rec := postJSON(t, h.RefreshToken, "/auth/refresh-token", `{"refresh_token":"deadbeef"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRefreshValidation(t *testing.T) {
	h := &AuthHandler{}
	for _, body := range []string{`{}`, `{"refresh_token":""}`, `{"refresh_token":"   "}`} {
		rec := postJSON(t, h.RefreshToken, "/auth/refresh-token", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}
