// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a reservation is accepted.  It
// carries enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
    BookingID    uint64 `json:"booking_id"`
    UserID       uint64 `json:"user_id"`
    FacilityID   uint64 `json:"facility_id"`
    FacilityName string `json:"facility_name"`
    Date         string `json:"date"`
    StartTime    string `json:"start_time"`
    EndTime      string `json:"end_time"`
    AmountCents  int64  `json:"amount_cents"`
    CreatedAt    string `json:"created_at"`
}

// PaymentCapturedEvent is published after the gateway confirms a charge
// for a booking.
type PaymentCapturedEvent struct {
    BookingID     uint64 `json:"booking_id"`
    UserID        uint64 `json:"user_id"`
    AmountCents   int64  `json:"amount_cents"`
    TransactionID string `json:"transaction_id"`
    CapturedAt    string `json:"captured_at"`
}
