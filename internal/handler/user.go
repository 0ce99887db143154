package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-facility-booking/internal/config"
    "github.com/iliyamo/sports-facility-booking/internal/model"
    "github.com/iliyamo/sports-facility-booking/internal/repository"
    "github.com/iliyamo/sports-facility-booking/internal/utils"
)

// UserHandler covers account management beyond signup/login: password
// change for the owner, status switches and soft deletion for admins.
type UserHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.TokenRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo) *UserHandler {
    return &UserHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

type changePasswordReq struct {
    CurrentPassword string `json:"current_password"`
    NewPassword     string `json:"new_password"`
}

type setStatusReq struct {
    Status string `json:"status"`
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every refresh token.  The password_changed_at stamp written by
// the repository invalidates all previously issued access tokens, so the
// response carries a fresh token pair.
func (h *UserHandler) ChangePassword(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req changePasswordReq
    if err := c.Bind(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password and new_password are required"})
    }

    ctx := c.Request().Context()
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is wrong"})
    }
    if err := h.Users.UpdatePassword(ctx, uid, req.NewPassword, h.Cfg.BcryptCost); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
    }
    if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke tokens failed"})
    }

    // Existing sessions are dead; hand the caller a fresh pair.
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store token failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access_token":  access.Token,
        "refresh_token": refresh.Raw,
    })
}

// SetStatus switches an account between active and blocked.  Admin only.
// Blocking also revokes the user's refresh tokens so the lockout is
// immediate, not deferred to access-token expiry.
func (h *UserHandler) SetStatus(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    var req setStatusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Status != model.StatusActive && req.Status != model.StatusBlocked {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active or blocked"})
    }

    ctx := c.Request().Context()
    if err := h.Users.SetStatus(ctx, id, req.Status); err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
    }
    if req.Status == model.StatusBlocked {
        if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke tokens failed"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

// Delete soft-deletes an account and revokes its sessions.  Admin only.
// The row stays so bookings keep a valid owner reference.
func (h *UserHandler) Delete(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    ctx := c.Request().Context()
    if err := h.Users.SoftDelete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
    }
    if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke tokens failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
