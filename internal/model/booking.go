package model

import "time"

// Reservation statuses.  A booking is accepted immediately on creation and
// can only move to canceled, never back.
const (
    BookingConfirmed = "confirmed"
    BookingCanceled  = "canceled"
)

// Payment statuses, tracked separately from the reservation status so that
// "reserved" and "settled" are never conflated.  A canceled booking keeps
// whatever payment status it had.
const (
    PaymentUnpaid = "unpaid"
    PaymentPaid   = "paid"
    PaymentFailed = "failed"
)

// Booking records a user's reservation of a facility for a time window on
// a calendar day.  Start and end are wall-clock minutes since midnight on
// the booking date, which keeps the half-open overlap check to integer
// comparisons.  AmountCents is derived from the facility's hourly rate and
// the window length; it is never supplied by the client.
//
// Fields:
//  ID            – primary key identifier.
//  FacilityID    – facility being reserved.
//  UserID        – user who owns the booking.
//  Date          – calendar day of the reservation (UTC midnight).
//  StartMinutes  – start of the window, minutes since midnight.
//  EndMinutes    – end of the window, exclusive.
//  AmountCents   – payable amount in cents.
//  Status        – "confirmed" or "canceled".
//  PaymentStatus – "unpaid", "paid" or "failed".
//  TransactionID – gateway transaction reference (nil until paid).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
    ID            uint64    // bookings.id
    FacilityID    uint64    // bookings.facility_id
    UserID        uint64    // bookings.user_id
    Date          time.Time // bookings.booking_date
    StartMinutes  int       // bookings.start_minutes
    EndMinutes    int       // bookings.end_minutes
    AmountCents   int64     // bookings.amount_cents
    Status        string    // bookings.status
    PaymentStatus string    // bookings.payment_status
    TransactionID *string   // bookings.transaction_id (nullable)
    CreatedAt     time.Time // bookings.created_at
    UpdatedAt     time.Time // bookings.updated_at
}
