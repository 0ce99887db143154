package payment

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/stripe/stripe-go/v76"
    "github.com/stripe/stripe-go/v76/client"
)

// chargeTimeout bounds every gateway round trip.  Hitting it means the
// outcome is unknown, not that the charge failed.
const chargeTimeout = 10 * time.Second

// StripeGateway captures charges through Stripe PaymentIntents.
type StripeGateway struct {
    api      *client.API
    currency string
}

// NewStripeGateway builds a gateway client from the secret API key loaded
// at startup.
func NewStripeGateway(secretKey, currency string) *StripeGateway {
    api := &client.API{}
    api.Init(secretKey, nil)
    return &StripeGateway{api: api, currency: currency}
}

// IdempotencyKey derives the deterministic key for a booking.  Every
// capture attempt for the same booking presents the same key, so Stripe
// collapses retries into a single charge.
func IdempotencyKey(bookingID uint64) string {
    return fmt.Sprintf("booking-%d", bookingID)
}

// Charge creates and confirms a PaymentIntent for the request.  Card
// refusals map to ErrCardDeclined; timeouts and transport errors map to
// ErrGatewayUnavailable.
func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (string, error) {
    ctx, cancel := context.WithTimeout(ctx, chargeTimeout)
    defer cancel()

    currency := req.Currency
    if currency == "" {
        currency = g.currency
    }
    params := &stripe.PaymentIntentParams{
        Params: stripe.Params{
            Context:        ctx,
            IdempotencyKey: stripe.String(IdempotencyKey(req.BookingID)),
        },
        Amount:        stripe.Int64(req.AmountCents),
        Currency:      stripe.String(currency),
        PaymentMethod: stripe.String(req.PaymentMethodID),
        Confirm:       stripe.Bool(true),
        AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
            Enabled:        stripe.Bool(true),
            AllowRedirects: stripe.String("never"),
        },
    }

    pi, err := g.api.PaymentIntents.New(params)
    if err != nil {
        return "", classifyStripeErr(err)
    }
    if pi.Status != stripe.PaymentIntentStatusSucceeded {
        return "", ErrCardDeclined
    }
    return pi.ID, nil
}

// classifyStripeErr folds the Stripe error taxonomy into the two outcomes
// the booking flow distinguishes: known refusal vs unknown failure.
func classifyStripeErr(err error) error {
    if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
        return ErrGatewayUnavailable
    }
    var se *stripe.Error
    if errors.As(err, &se) {
        switch se.Type {
        case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
            return ErrCardDeclined
        }
    }
    return ErrGatewayUnavailable
}
