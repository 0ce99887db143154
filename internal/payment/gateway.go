// Package payment wraps the external card gateway behind a small
// interface so handlers and tests never depend on Stripe types directly.
package payment

import (
    "context"
    "errors"
)

// ChargeRequest describes a single capture attempt.  The amount is in the
// smallest currency unit and the booking id doubles as the idempotency
// scope: retries for the same booking can never double-charge.
type ChargeRequest struct {
    BookingID       uint64
    AmountCents     int64
    Currency        string
    PaymentMethodID string
}

// Gateway authorizes and captures a charge, returning the gateway's
// transaction reference on success.
type Gateway interface {
    Charge(ctx context.Context, req ChargeRequest) (string, error)
}

// ErrCardDeclined is returned when the gateway processed the request and
// refused the card.  The outcome is known: the booking was not charged.
var ErrCardDeclined = errors.New("card declined")

// ErrGatewayUnavailable is returned on timeouts and transport failures.
// The outcome is unknown (the charge may or may not have settled), so
// callers must not record a failure.  The idempotency key makes a retry
// safe.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")
