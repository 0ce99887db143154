package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/sports-facility-booking/internal/model"
    "github.com/iliyamo/sports-facility-booking/internal/utils"
)

// BookingRepo provides persistence for bookings.  The exclusivity rule
// (no two non-canceled bookings for the same facility may overlap on the
// same date) is enforced here, inside the insert transaction, so no
// handler can recreate the race by checking first and inserting later.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// ErrBookingNotFound is returned when no booking matches the given id
// (or the id is not visible to the requesting user).
var ErrBookingNotFound = errors.New("booking not found")

const dateLayout = "2006-01-02"

// CreateExclusive inserts a booking while holding a row lock on its
// facility.  The lock serializes concurrent creates per facility, so the
// overlap check and the insert commit atomically: of two racing requests
// for the same window, exactly one succeeds and the other observes the
// winner's row and fails with ErrSlotTaken.
func (r *BookingRepo) CreateExclusive(ctx context.Context, b *model.Booking) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock the facility row. Deleted facilities are not bookable.
    var facilityID uint64
    err = tx.QueryRowContext(ctx,
        "SELECT id FROM facilities WHERE id = ? AND is_deleted = 0 FOR UPDATE",
        b.FacilityID).Scan(&facilityID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrFacilityNotFound
        }
        return err
    }

    // Half-open overlap test: an existing booking collides when it starts
    // before our end and ends after our start.
    var clashes int
    err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM bookings
         WHERE facility_id = ? AND booking_date = ? AND status <> ?
           AND start_minutes < ? AND end_minutes > ?`,
        b.FacilityID, b.Date.Format(dateLayout), model.BookingCanceled,
        b.EndMinutes, b.StartMinutes).Scan(&clashes)
    if err != nil {
        return err
    }
    if clashes > 0 {
        return ErrSlotTaken
    }

    res, err := tx.ExecContext(ctx,
        `INSERT INTO bookings (facility_id, user_id, booking_date, start_minutes, end_minutes, amount_cents, status, payment_status)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        b.FacilityID, b.UserID, b.Date.Format(dateLayout), b.StartMinutes, b.EndMinutes,
        b.AmountCents, model.BookingConfirmed, model.PaymentUnpaid)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    b.Status = model.BookingConfirmed
    b.PaymentStatus = model.PaymentUnpaid

    // Read back defaults so the caller returns a fully populated record.
    err = tx.QueryRowContext(ctx,
        "SELECT created_at, updated_at FROM bookings WHERE id = ?", b.ID).
        Scan(&b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// BookedIntervals returns the [start,end) windows of every non-canceled
// booking for a facility on a date.  Availability is computed as the
// complement of this set over the fixed slot grid.
func (r *BookingRepo) BookedIntervals(ctx context.Context, facilityID uint64, date time.Time) ([]utils.Slot, error) {
    const q = `SELECT start_minutes, end_minutes FROM bookings
               WHERE facility_id = ? AND booking_date = ? AND status <> ?
               ORDER BY start_minutes`
    rows, err := r.db.QueryContext(ctx, q, facilityID, date.Format(dateLayout), model.BookingCanceled)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []utils.Slot
    for rows.Next() {
        var s utils.Slot
        if err := rows.Scan(&s.StartMinutes, &s.EndMinutes); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// GetByID fetches a booking row without joins.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT id, facility_id, user_id, booking_date, start_minutes, end_minutes,
                      amount_cents, status, payment_status, transaction_id, created_at, updated_at
               FROM bookings WHERE id = ?`
    var (
        b     model.Booking
        txnID sql.NullString
    )
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &b.ID, &b.FacilityID, &b.UserID, &b.Date, &b.StartMinutes, &b.EndMinutes,
        &b.AmountCents, &b.Status, &b.PaymentStatus, &txnID, &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    if txnID.Valid {
        v := txnID.String
        b.TransactionID = &v
    }
    return &b, nil
}

// FacilitySummary is the facility part embedded in booking listings.
type FacilitySummary struct {
    ID           uint64  `json:"id"`
    Name         string  `json:"name"`
    Description  string  `json:"description"`
    PricePerHour float64 `json:"pricePerHour"`
    Location     string  `json:"location"`
    IsDeleted    bool    `json:"isDeleted"`
}

// UserSummary is the owner part embedded in the admin booking listing.
type UserSummary struct {
    ID      uint64 `json:"id"`
    Name    string `json:"name"`
    Email   string `json:"email"`
    Role    string `json:"role"`
    Phone   string `json:"phone"`
    Address string `json:"address"`
}

// BookingDetail is a booking joined with its facility (and, for admin
// listings, its owner).  Times are rendered as the HH:MM strings the API
// speaks; the amount is rendered in currency units.
type BookingDetail struct {
    ID            uint64           `json:"id"`
    Date          string           `json:"date"`
    StartTime     string           `json:"startTime"`
    EndTime       string           `json:"endTime"`
    PayableAmount float64          `json:"payableAmount"`
    Status        string           `json:"status"`
    PaymentStatus string           `json:"paymentStatus"`
    TransactionID *string          `json:"transactionId,omitempty"`
    Facility      FacilitySummary  `json:"facility"`
    User          *UserSummary     `json:"user,omitempty"`
}

const detailColumns = `b.id, b.booking_date, b.start_minutes, b.end_minutes,
                       b.amount_cents, b.status, b.payment_status, b.transaction_id,
                       f.id, f.name, f.description, f.price_per_hour_cents, f.location, f.is_deleted`

func scanDetail(rows *sql.Rows, withUser bool) (*BookingDetail, error) {
    var (
        d          BookingDetail
        date       time.Time
        start, end int
        cents      int64
        txnID      sql.NullString
        priceCents int64
        u          UserSummary
    )
    dest := []interface{}{
        &d.ID, &date, &start, &end, &cents, &d.Status, &d.PaymentStatus, &txnID,
        &d.Facility.ID, &d.Facility.Name, &d.Facility.Description, &priceCents,
        &d.Facility.Location, &d.Facility.IsDeleted,
    }
    if withUser {
        dest = append(dest, &u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.Address)
    }
    if err := rows.Scan(dest...); err != nil {
        return nil, err
    }
    d.Date = date.Format(dateLayout)
    d.StartTime = utils.FormatClock(start)
    d.EndTime = utils.FormatClock(end)
    d.PayableAmount = float64(cents) / 100
    d.Facility.PricePerHour = float64(priceCents) / 100
    if txnID.Valid {
        v := txnID.String
        d.TransactionID = &v
    }
    if withUser {
        d.User = &u
    }
    return &d, nil
}

// ListAll returns every non-canceled booking joined with facility and
// owner summaries, newest first.  This backs the admin view.
func (r *BookingRepo) ListAll(ctx context.Context) ([]*BookingDetail, error) {
    const q = `SELECT ` + detailColumns + `,
                      u.id, u.name, u.email, u.role, u.phone, u.address
               FROM bookings b
               JOIN facilities f ON f.id = b.facility_id
               JOIN users u ON u.id = b.user_id
               WHERE b.status <> ?
               ORDER BY b.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, model.BookingCanceled)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]*BookingDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows, true)
        if err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// ListByUser returns the caller's non-canceled bookings with facility
// summaries, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*BookingDetail, error) {
    const q = `SELECT ` + detailColumns + `
               FROM bookings b
               JOIN facilities f ON f.id = b.facility_id
               WHERE b.user_id = ? AND b.status <> ?
               ORDER BY b.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID, model.BookingCanceled)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]*BookingDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows, false)
        if err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

// Cancel flips a booking to canceled on behalf of requesterID.  Unless
// admin is set, the booking must belong to the requester; a foreign
// booking is reported as not found rather than forbidden so ids cannot be
// probed.  Canceling twice returns ErrAlreadyCanceled and performs no
// update.  The status flip never touches payment fields.
func (r *BookingRepo) Cancel(ctx context.Context, bookingID, requesterID uint64, admin bool) (*model.Booking, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var (
        ownerID uint64
        status  string
    )
    err = tx.QueryRowContext(ctx,
        "SELECT user_id, status FROM bookings WHERE id = ? FOR UPDATE", bookingID).
        Scan(&ownerID, &status)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    if !admin && ownerID != requesterID {
        return nil, ErrBookingNotFound
    }
    if status == model.BookingCanceled {
        return nil, ErrAlreadyCanceled
    }
    if _, err := tx.ExecContext(ctx,
        "UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
        model.BookingCanceled, bookingID); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return r.GetByID(ctx, bookingID)
}

// MarkPaid records a successful capture.  The guard on payment_status
// keeps a replayed success from overwriting an earlier transaction id.
func (r *BookingRepo) MarkPaid(ctx context.Context, id uint64, transactionID string) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE bookings SET payment_status = ?, transaction_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND payment_status <> ?",
        model.PaymentPaid, transactionID, id, model.PaymentPaid)
    return err
}

// MarkPaymentFailed records a gateway decline.  Only an unpaid booking
// moves to failed; declines never claw back a settled payment.
func (r *BookingRepo) MarkPaymentFailed(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE bookings SET payment_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND payment_status = ?",
        model.PaymentFailed, id, model.PaymentUnpaid)
    return err
}
