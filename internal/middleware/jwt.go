package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/sports-facility-booking/internal/model"
    "github.com/iliyamo/sports-facility-booking/internal/repository"
)

// UserLoader is the slice of the user repository the guard needs.  Taking
// an interface keeps the middleware testable without a database.
type UserLoader interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and checks the account is still allowed in.  Signature verification
// alone is not enough: the user may have been deleted or blocked since the
// token was issued, or the password may have changed, which invalidates
// every earlier token.  On success the user id and role are stored in the
// context under "user_id" and "role" for handlers and RequireRole.
//
// Responses: 401 when no valid bearer token is present, 404 when the
// encoded user no longer exists, 403 when the account is deleted, blocked
// or the token predates the last password change.
func JWTAuth(secret string, users UserLoader) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse with HS256 and our secret; reject any other signing
            // method before touching the claims.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            uid, ok := subjectID(claims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            u, err := users.GetByID(ctx, uid)
            if err != nil {
                if errors.Is(err, repository.ErrUserNotFound) {
                    return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
            }
            if u.IsDeleted || u.Status == model.StatusBlocked {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
            }
            // A password change invalidates every token issued before it.
            if u.PasswordChangedAt != nil {
                iat, okIat := issuedAt(claims)
                if !okIat || iat < u.PasswordChangedAt.UTC().Unix() {
                    return c.JSON(http.StatusForbidden, echo.Map{"error": "token no longer valid"})
                }
            }

            // Role comes from the database, not the claim, so role changes
            // take effect without waiting for token expiry.
            c.Set("user_id", u.ID)
            c.Set("role", u.Role)
            return next(c)
        }
    }
}

// subjectID extracts the sub claim as a uint64.  JWT numbers decode as
// float64; some issuers encode numeric strings.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
    switch v := claims["sub"].(type) {
    case float64:
        return uint64(v), true
    case string:
        if n, err := strconv.ParseUint(v, 10, 64); err == nil {
            return n, true
        }
    }
    return 0, false
}

// issuedAt extracts the iat claim as a Unix timestamp.
func issuedAt(claims jwt.MapClaims) (int64, bool) {
    switch v := claims["iat"].(type) {
    case float64:
        return int64(v), true
    case string:
        if n, err := strconv.ParseInt(v, 10, 64); err == nil {
            return n, true
        }
    }
    return 0, false
}
