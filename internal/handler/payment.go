package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-facility-booking/internal/model"
    "github.com/iliyamo/sports-facility-booking/internal/payment"
    "github.com/iliyamo/sports-facility-booking/internal/queue"
    "github.com/iliyamo/sports-facility-booking/internal/repository"
    queue_publisher "github.com/iliyamo/sports-facility-booking/internal/service"
)

// paymentStore is the slice of the booking repository the payment flow
// needs.  Satisfied by *repository.BookingRepo; an interface so tests can
// exercise every outcome without a database.
type paymentStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
    MarkPaid(ctx context.Context, id uint64, transactionID string) error
    MarkPaymentFailed(ctx context.Context, id uint64) error
}

// PaymentHandler captures charges for bookings.
type PaymentHandler struct {
    Store    paymentStore
    Gateway  payment.Gateway
    Currency string
}

func NewPaymentHandler(store paymentStore, gateway payment.Gateway, currency string) *PaymentHandler {
    return &PaymentHandler{Store: store, Gateway: gateway, Currency: currency}
}

type payReq struct {
    BookingID       uint64 `json:"bookingId"`
    PaymentMethodID string `json:"paymentMethodId"`
}

// Pay captures the amount due on a booking.
//
// Outcomes:
//   - success: payment_status becomes paid, the transaction id is stored
//     and a payment.captured event goes out.
//   - card declined: payment_status becomes failed, 400.  The booking can
//     be retried with a different card.
//   - gateway timeout or transport failure: 502 and the record is left
//     untouched.  The outcome is unknown, and the deterministic
//     idempotency key makes a retry safe without double-charging.
//   - already paid: 200 with the stored transaction id.  Replaying a
//     success is not an error.
func (h *PaymentHandler) Pay(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req payReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.BookingID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookingId is required"})
    }
    if req.PaymentMethodID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "paymentMethodId is required"})
    }

    ctx := c.Request().Context()
    b, err := h.Store.GetByID(ctx, req.BookingID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booking failed"})
    }
    // Same visibility rule as cancellation: a foreign booking is reported
    // as missing, not forbidden.
    if b.UserID != uid && !isAdmin(c) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    }
    if b.Status == model.BookingCanceled {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is canceled"})
    }
    if b.PaymentStatus == model.PaymentPaid {
        txn := ""
        if b.TransactionID != nil {
            txn = *b.TransactionID
        }
        return c.JSON(http.StatusOK, echo.Map{
            "booking":       toBookingPayload(b),
            "transactionId": txn,
        })
    }

    txnID, err := h.Gateway.Charge(ctx, payment.ChargeRequest{
        BookingID:       b.ID,
        AmountCents:     b.AmountCents,
        Currency:        h.Currency,
        PaymentMethodID: req.PaymentMethodID,
    })
    if err != nil {
        switch {
        case errors.Is(err, payment.ErrCardDeclined):
            if mErr := h.Store.MarkPaymentFailed(ctx, b.ID); mErr != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
            }
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment declined"})
        case errors.Is(err, payment.ErrGatewayUnavailable):
            return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "charge failed"})
    }

    if err := h.Store.MarkPaid(ctx, b.ID, txnID); err != nil {
        // The charge settled; surface the transaction id even though the
        // local write failed so support can reconcile.
        return c.JSON(http.StatusInternalServerError, echo.Map{
            "error":         "charge succeeded but recording failed",
            "transactionId": txnID,
        })
    }
    b.PaymentStatus = model.PaymentPaid
    b.TransactionID = &txnID

    event := queue.PaymentCapturedEvent{
        BookingID:     b.ID,
        UserID:        b.UserID,
        AmountCents:   b.AmountCents,
        TransactionID: txnID,
        CapturedAt:    time.Now().UTC().Format(time.RFC3339),
    }
    go func() {
        pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishPaymentCaptured(pubCtx, event)
    }()

    return c.JSON(http.StatusOK, echo.Map{
        "booking":       toBookingPayload(b),
        "transactionId": txnID,
    })
}
