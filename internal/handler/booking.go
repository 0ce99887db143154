package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-facility-booking/internal/model"
    "github.com/iliyamo/sports-facility-booking/internal/queue"
    "github.com/iliyamo/sports-facility-booking/internal/repository"
    queue_publisher "github.com/iliyamo/sports-facility-booking/internal/service"
    "github.com/iliyamo/sports-facility-booking/internal/utils"
)

// bookingStore is the slice of the booking repository the lifecycle
// handlers need.  Satisfied by *repository.BookingRepo; an interface so
// tests can drive the status-code mapping with in-memory stubs.
type bookingStore interface {
    CreateExclusive(ctx context.Context, b *model.Booking) error
    ListAll(ctx context.Context) ([]*repository.BookingDetail, error)
    ListByUser(ctx context.Context, userID uint64) ([]*repository.BookingDetail, error)
    Cancel(ctx context.Context, bookingID, requesterID uint64, admin bool) (*model.Booking, error)
}

// BookingHandler drives the booking lifecycle: create, list, cancel.
type BookingHandler struct {
    Bookings   bookingStore
    Facilities facilitySource
}

func NewBookingHandler(bookings bookingStore, facilities facilitySource) *BookingHandler {
    return &BookingHandler{Bookings: bookings, Facilities: facilities}
}

// createBookingReq is the JSON body for POST /bookings.  Times are HH:MM
// wall-clock strings, the date is YYYY-MM-DD.
type createBookingReq struct {
    Facility  uint64 `json:"facility"`
    Date      string `json:"date"`
    StartTime string `json:"startTime"`
    EndTime   string `json:"endTime"`
}

// bookingPayload is the response shape for a single booking.
type bookingPayload struct {
    ID            uint64  `json:"id"`
    Facility      uint64  `json:"facility"`
    User          uint64  `json:"user"`
    Date          string  `json:"date"`
    StartTime     string  `json:"startTime"`
    EndTime       string  `json:"endTime"`
    PayableAmount float64 `json:"payableAmount"`
    Status        string  `json:"status"`
    PaymentStatus string  `json:"paymentStatus"`
    TransactionID *string `json:"transactionId,omitempty"`
}

func toBookingPayload(b *model.Booking) bookingPayload {
    return bookingPayload{
        ID:            b.ID,
        Facility:      b.FacilityID,
        User:          b.UserID,
        Date:          b.Date.Format("2006-01-02"),
        StartTime:     utils.FormatClock(b.StartMinutes),
        EndTime:       utils.FormatClock(b.EndMinutes),
        PayableAmount: float64(b.AmountCents) / 100,
        Status:        b.Status,
        PaymentStatus: b.PaymentStatus,
        TransactionID: b.TransactionID,
    }
}

// Create books a window on a facility for the authenticated user.
//
// The amount due is computed server-side from the facility's hourly rate
// and the window length; the client never supplies a price.  The overlap
// rule is enforced inside the repository transaction, so a clash answers
// 409 even under concurrent requests.
func (h *BookingHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Facility == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "facility is required"})
    }
    date, err := time.Parse("2006-01-02", req.Date)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }
    start, err := utils.ParseClock(req.StartTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime must be HH:MM"})
    }
    end, err := utils.ParseClock(req.EndTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "endTime must be HH:MM"})
    }
    if end <= start {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "endTime must be after startTime"})
    }

    ctx := c.Request().Context()
    f, err := h.Facilities.GetByID(ctx, req.Facility)
    if err != nil {
        if errors.Is(err, repository.ErrFacilityNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load facility failed"})
    }
    if f.IsDeleted {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }

    b := &model.Booking{
        FacilityID:   f.ID,
        UserID:       uid,
        Date:         date,
        StartMinutes: start,
        EndMinutes:   end,
        AmountCents:  utils.PayableCents(f.PricePerHourCents, start, end),
    }
    if err := h.Bookings.CreateExclusive(ctx, b); err != nil {
        switch {
        case errors.Is(err, repository.ErrFacilityNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
        case errors.Is(err, repository.ErrSlotTaken):
            return c.JSON(http.StatusConflict, echo.Map{"error": "time slot already booked"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
    }

    // Fire-and-forget: a broker outage must not fail the booking.
    event := queue.BookingCreatedEvent{
        BookingID:    b.ID,
        UserID:       b.UserID,
        FacilityID:   b.FacilityID,
        FacilityName: f.Name,
        Date:         b.Date.Format("2006-01-02"),
        StartTime:    utils.FormatClock(b.StartMinutes),
        EndTime:      utils.FormatClock(b.EndMinutes),
        AmountCents:  b.AmountCents,
        CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
    }
    go func() {
        pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = queue_publisher.PublishBookingCreated(pubCtx, event)
    }()

    return c.JSON(http.StatusCreated, toBookingPayload(b))
}

// ListAll returns every active booking with facility and owner details.
// Admin only; enforced in the router.
func (h *BookingHandler) ListAll(c echo.Context) error {
    list, err := h.Bookings.ListAll(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
    }
    return c.JSON(http.StatusOK, list)
}

// ListMine returns the caller's active bookings with facility details.
func (h *BookingHandler) ListMine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.Bookings.ListByUser(c.Request().Context(), uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
    }
    return c.JSON(http.StatusOK, list)
}

// Cancel flips a booking to canceled.  Owners cancel their own bookings;
// admins cancel anyone's.  A booking that belongs to someone else answers
// 404, not 403, so the endpoint cannot be used to probe for valid ids.
func (h *BookingHandler) Cancel(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }

    b, err := h.Bookings.Cancel(c.Request().Context(), id, uid, isAdmin(c))
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrBookingNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        case errors.Is(err, repository.ErrAlreadyCanceled):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking already canceled"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel booking failed"})
    }
    return c.JSON(http.StatusOK, toBookingPayload(b))
}
