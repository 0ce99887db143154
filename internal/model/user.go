package model

import "time"

// Roles a user account can hold.  Admins manage facilities and see every
// booking; regular users manage their own bookings only.
const (
    RoleAdmin = "admin"
    RoleUser  = "user"
)

// Account statuses.  A blocked account keeps its data but cannot pass the
// authentication guard.
const (
    StatusActive  = "active"
    StatusBlocked = "blocked"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  The json tags are omitted
// because these structs are used by the repository layer; handlers define
// separate response types that never include the password hash.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Name              – display name supplied at signup.
//  Email             – unique email address (lowercased).
//  PasswordHash      – bcrypt hashed password, never the plaintext.
//  Role              – "admin" or "user".
//  Status            – "active" or "blocked".
//  Phone             – optional contact phone.
//  Address           – optional postal address.
//  IsDeleted         – soft-delete flag; deleted users are never removed.
//  PasswordChangedAt – when the password last changed (nil if never);
//                      access tokens issued before this moment are stale.
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type User struct {
    ID                uint64     // users.id
    Name              string     // users.name
    Email             string     // users.email
    PasswordHash      string     // users.password_hash
    Role              string     // users.role
    Status            string     // users.status
    Phone             string     // users.phone
    Address           string     // users.address
    IsDeleted         bool       // users.is_deleted
    PasswordChangedAt *time.Time // users.password_changed_at (nullable)
    CreatedAt         time.Time  // users.created_at
    UpdatedAt         time.Time  // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry and
// revocation.  The plain token is not stored; only its SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
