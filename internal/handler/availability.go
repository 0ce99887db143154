package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-facility-booking/internal/model"
    "github.com/iliyamo/sports-facility-booking/internal/repository"
    "github.com/iliyamo/sports-facility-booking/internal/utils"
)

// intervalSource lists the booked windows for a facility on a date.
// Satisfied by *repository.BookingRepo; an interface so tests can stub it.
type intervalSource interface {
    BookedIntervals(ctx context.Context, facilityID uint64, date time.Time) ([]utils.Slot, error)
}

// facilitySource fetches a facility by id.  Satisfied by
// *repository.FacilityRepo.
type facilitySource interface {
    GetByID(ctx context.Context, id uint64) (*model.Facility, error)
}

// AvailabilityHandler answers the public slot-availability query.
type AvailabilityHandler struct {
    Bookings   intervalSource
    Facilities facilitySource
}

func NewAvailabilityHandler(bookings intervalSource, facilities facilitySource) *AvailabilityHandler {
    return &AvailabilityHandler{Bookings: bookings, Facilities: facilities}
}

type slotPayload struct {
    StartTime string `json:"startTime"`
    EndTime   string `json:"endTime"`
}

func toSlotPayloads(slots []utils.Slot) []slotPayload {
    out := make([]slotPayload, 0, len(slots))
    for _, s := range slots {
        out = append(out, slotPayload{
            StartTime: utils.FormatClock(s.StartMinutes),
            EndTime:   utils.FormatClock(s.EndMinutes),
        })
    }
    return out
}

// Check handles GET /check-availability?date=YYYY-MM-DD[&facility=ID].
// The response is a bare array of {startTime,endTime} windows.
//
// Without a facility the full fixed grid comes back: the caller asked what
// the schedule looks like, not what is free somewhere specific.  With a
// facility the response is the grid minus every window touched by a
// non-canceled booking on that date.
func (h *AvailabilityHandler) Check(c echo.Context) error {
    date, err := time.Parse("2006-01-02", c.QueryParam("date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }

    rawFacility := c.QueryParam("facility")
    if rawFacility == "" {
        return c.JSON(http.StatusOK, toSlotPayloads(utils.FixedSlots()))
    }
    facilityID, err := strconv.ParseUint(rawFacility, 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
    }

    ctx := c.Request().Context()
    f, err := h.Facilities.GetByID(ctx, facilityID)
    if err != nil {
        if errors.Is(err, repository.ErrFacilityNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load facility failed"})
    }
    if f.IsDeleted {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }

    booked, err := h.Bookings.BookedIntervals(ctx, facilityID, date)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bookings failed"})
    }
    return c.JSON(http.StatusOK, toSlotPayloads(utils.FreeSlots(booked)))
}
