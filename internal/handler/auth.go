package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-facility-booking/internal/config"
    "github.com/iliyamo/sports-facility-booking/internal/model"
    "github.com/iliyamo/sports-facility-booking/internal/repository"
    "github.com/iliyamo/sports-facility-booking/internal/utils"
)

// userStore is the account surface the auth endpoints need.  Satisfied
// by *repository.UserRepo; an interface so tests can check credential
// handling against an in-memory store.
type userStore interface {
    Create(ctx context.Context, name, email, password, role, phone, address string, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// tokenStore is the refresh-token surface.  Satisfied by
// *repository.TokenRepo.
type tokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler wires the auth endpoints to their repositories.  It issues
// access/refresh token pairs and guards every identity transition.
type AuthHandler struct {
    Cfg    config.Config
    Users  userStore
    Tokens tokenStore
}

func NewAuthHandler(cfg config.Config, users userStore, tokens tokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

// signupReq is the JSON body accepted by POST /auth/signup.
type signupReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"`
    Phone    string `json:"phone"`
    Address  string `json:"address"`
}

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

// logoutReq optionally widens logout to every session of the account.
type logoutReq struct {
    RefreshToken string `json:"refresh_token"`
    All          bool   `json:"all"`
}

// userPayload is the public view of an account.  The password hash never
// leaves this package.
type userPayload struct {
    ID      uint64 `json:"id"`
    Name    string `json:"name"`
    Email   string `json:"email"`
    Role    string `json:"role"`
    Phone   string `json:"phone,omitempty"`
    Address string `json:"address,omitempty"`
}

func publicUser(u model.User) userPayload {
    return userPayload{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Phone: u.Phone, Address: u.Address}
}

// tokenPair bundles the two tokens returned by signup, login and refresh.
type tokenPair struct {
    AccessToken      string `json:"access_token"`
    AccessExpiresAt  string `json:"access_expires_at"`
    RefreshToken     string `json:"refresh_token"`
    RefreshExpiresAt string `json:"refresh_expires_at"`
}

// issuePair mints an access JWT and a fresh refresh token for the user and
// persists the refresh token hash.
func (h *AuthHandler) issuePair(c echo.Context, u model.User) (tokenPair, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return tokenPair{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return tokenPair{}, err
    }
    if err := h.Tokens.StoreRefresh(c.Request().Context(), u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return tokenPair{}, err
    }
    return tokenPair{
        AccessToken:      access.Token,
        AccessExpiresAt:  access.Exp.Format(time.RFC3339),
        RefreshToken:     refresh.Raw,
        RefreshExpiresAt: refresh.Exp.Format(time.RFC3339),
    }, nil
}

// Signup registers a new account and immediately signs it in.
//
// Validation: name, email and password are required; role may be "user" or
// "admin" and defaults to "user".  A duplicate email answers 409 so clients
// can distinguish "taken" from a malformed request.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.TrimSpace(req.Email)
    if req.Name == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
    }
    role := strings.ToLower(strings.TrimSpace(req.Role))
    switch role {
    case model.RoleAdmin, model.RoleUser:
        // accepted as-is
    case "":
        role = model.RoleUser
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin or user"})
    }

    ctx := c.Request().Context()
    id, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, req.Phone, req.Address, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    pair, err := h.issuePair(c, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"user": publicUser(u), "tokens": pair})
}

// Login verifies email+password and returns a fresh token pair.  Unknown
// email and wrong password answer the same 401 so the endpoint leaks
// nothing about which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Email) == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
    }

    u, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    if u.IsDeleted || u.Status == model.StatusBlocked {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    pair, err := h.issuePair(c, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"user": publicUser(u), "tokens": pair})
}

// RefreshToken exchanges a valid refresh token for a new access token
// without rotating the refresh token itself.
//
// An unknown, revoked or expired token answers 403; a token whose user has
// vanished answers 404.  The distinction matters to clients: 403 means
// "log in again", 404 means the account itself is gone.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
    }

    ctx := c.Request().Context()
    userID, err := h.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(req.RefreshToken))
    if err != nil {
        if errors.Is(err, repository.ErrRefreshInvalid) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate token failed"})
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    if u.IsDeleted || u.Status == model.StatusBlocked {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access_token":      access.Token,
        "access_expires_at": access.Exp.Format(time.RFC3339),
    })
}

// Refresh rotates a refresh token: the presented token is revoked and a
// brand-new pair is issued.  Rotation limits the replay window if a
// refresh token leaks.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
    }

    ctx := c.Request().Context()
    hash := utils.HashRefreshRaw(req.RefreshToken)
    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if errors.Is(err, repository.ErrRefreshInvalid) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate token failed"})
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    if u.IsDeleted || u.Status == model.StatusBlocked {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
    }
    // Revoke first so the old token cannot be replayed alongside the new one.
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke token failed"})
    }
    pair, err := h.issuePair(c, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"user": publicUser(u), "tokens": pair})
}

// Logout revokes the presented refresh token, or with "all": true every
// active session of the account.  Revoking an already revoked or unknown
// token still answers 200; logout is idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req logoutReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
    }

    ctx := c.Request().Context()
    hash := utils.HashRefreshRaw(req.RefreshToken)
    if req.All {
        // Widening to every session requires proving the token is live.
        userID, err := h.Tokens.ValidateRefresh(ctx, hash)
        if err != nil {
            if errors.Is(err, repository.ErrRefreshInvalid) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid refresh token"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate token failed"})
        }
        if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke tokens failed"})
        }
        return c.JSON(http.StatusOK, echo.Map{"message": "logged out everywhere"})
    }

    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke token failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user's profile.  The JWT middleware has
// already verified the account still exists and is active.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    u, err := h.Users.GetByID(c.Request().Context(), uid)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"user": publicUser(u)})
}
