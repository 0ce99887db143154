package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sports-facility-booking/internal/model"
	"github.com/iliyamo/sports-facility-booking/internal/repository"
	"github.com/iliyamo/sports-facility-booking/internal/utils"
)

const testSecret = "unit-test-secret"

// stubUsers satisfies UserLoader with a fixed answer per id.
type stubUsers struct {
	users map[uint64]model.User
}

func (s *stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func runGuard(t *testing.T, users UserLoader, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := JWTAuth(testSecret, users)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, reached
}

func bearerFor(t *testing.T, userID uint64, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(testSecret, userID, role, 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	return "Bearer " + at.Token
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec, reached := runGuard(t, &stubUsers{}, "")
	if reached {
		t.Fatal("handler ran without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec, reached := runGuard(t, &stubUsers{}, "Bearer not-a-jwt")
	if reached {
		t.Fatal("handler ran with a garbage token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthUserGone(t *testing.T) {
	rec, reached := runGuard(t, &stubUsers{users: map[uint64]model.User{}}, bearerFor(t, 7, model.RoleUser))
	if reached {
		t.Fatal("handler ran for a vanished user")
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestJWTAuthBlockedUser(t *testing.T) {
	users := &stubUsers{users: map[uint64]model.User{
		7: {ID: 7, Role: model.RoleUser, Status: model.StatusBlocked},
	}}
	rec, reached := runGuard(t, users, bearerFor(t, 7, model.RoleUser))
	if reached {
		t.Fatal("handler ran for a blocked user")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestJWTAuthDeletedUser(t *testing.T) {
	users := &stubUsers{users: map[uint64]model.User{
		7: {ID: 7, Role: model.RoleUser, Status: model.StatusActive, IsDeleted: true},
	}}
	rec, reached := runGuard(t, users, bearerFor(t, 7, model.RoleUser))
	if reached {
		t.Fatal("handler ran for a deleted user")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestJWTAuthStaleAfterPasswordChange(t *testing.T) {
	changed := time.Now().UTC().Add(time.Hour) // change in the future of iat
	users := &stubUsers{users: map[uint64]model.User{
		7: {ID: 7, Role: model.RoleUser, Status: model.StatusActive, PasswordChangedAt: &changed},
	}}
	rec, reached := runGuard(t, users, bearerFor(t, 7, model.RoleUser))
	if reached {
		t.Fatal("handler ran with a token issued before the password change")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestJWTAuthSuccessUsesDatabaseRole(t *testing.T) {
	users := &stubUsers{users: map[uint64]model.User{
		7: {ID: 7, Role: model.RoleAdmin, Status: model.StatusActive},
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	// Token claims "user" but the database says admin; the database wins.
	req.Header.Set("Authorization", bearerFor(t, 7, model.RoleUser))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(testSecret, users)(func(c echo.Context) error {
		if got, _ := c.Get("user_id").(uint64); got != 7 {
			t.Errorf("user_id = %v, want 7", c.Get("user_id"))
		}
		if got, _ := c.Get("role").(string); got != model.RoleAdmin {
			t.Errorf("role = %v, want admin", c.Get("role"))
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
