package handler

import (
    "context"
    "database/sql"
    "errors"
    "math"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-facility-booking/internal/model"
    "github.com/iliyamo/sports-facility-booking/internal/repository"
)

// facilityStore is the repository surface the facility CRUD needs.
// Satisfied by *repository.FacilityRepo; an interface so tests can run
// the handlers over an in-memory store.
type facilityStore interface {
    Create(ctx context.Context, f *model.Facility) error
    GetByID(ctx context.Context, id uint64) (*model.Facility, error)
    ListActive(ctx context.Context) ([]*model.Facility, error)
    Update(ctx context.Context, f *model.Facility) error
    SoftDelete(ctx context.Context, id uint64) (*model.Facility, error)
}

// FacilityHandler exposes CRUD over bookable facilities.  Listing is
// public; create, update and delete are admin-only (enforced in the
// router via RequireRole).
type FacilityHandler struct {
    Facilities facilityStore
}

func NewFacilityHandler(facilities facilityStore) *FacilityHandler {
    return &FacilityHandler{Facilities: facilities}
}

// facilityReq is the write payload.  Pointers distinguish "absent" from
// "zero" so PUT can merge partial updates.
type facilityReq struct {
    Name         *string  `json:"name"`
    Description  *string  `json:"description"`
    PricePerHour *float64 `json:"pricePerHour"`
    Location     *string  `json:"location"`
}

// facilityPayload is the read shape.  Prices are stored in cents and
// rendered in currency units at the edge.
type facilityPayload struct {
    ID           uint64  `json:"id"`
    Name         string  `json:"name"`
    Description  string  `json:"description"`
    PricePerHour float64 `json:"pricePerHour"`
    Location     string  `json:"location"`
    IsDeleted    bool    `json:"isDeleted"`
    CreatedAt    string  `json:"createdAt"`
    UpdatedAt    string  `json:"updatedAt"`
}

func toFacilityPayload(f *model.Facility) facilityPayload {
    return facilityPayload{
        ID:           f.ID,
        Name:         f.Name,
        Description:  f.Description,
        PricePerHour: float64(f.PricePerHourCents) / 100,
        Location:     f.Location,
        IsDeleted:    f.IsDeleted,
        CreatedAt:    f.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
        UpdatedAt:    f.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
    }
}

// toCents converts a currency amount to integer cents, rounding to the
// nearest cent so 19.999 does not truncate to 1999.
func toCents(amount float64) int64 {
    return int64(math.Round(amount * 100))
}

func pathID(c echo.Context) (uint64, error) {
    return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Create registers a new facility.  Name and a positive hourly price are
// required.
func (h *FacilityHandler) Create(c echo.Context) error {
    var req facilityReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    if req.PricePerHour == nil || *req.PricePerHour <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "pricePerHour must be positive"})
    }

    f := &model.Facility{
        Name:              strings.TrimSpace(*req.Name),
        PricePerHourCents: toCents(*req.PricePerHour),
    }
    if req.Description != nil {
        f.Description = *req.Description
    }
    if req.Location != nil {
        f.Location = *req.Location
    }
    if err := h.Facilities.Create(c.Request().Context(), f); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create facility failed"})
    }
    return c.JSON(http.StatusCreated, toFacilityPayload(f))
}

// List returns all facilities that have not been deleted.
func (h *FacilityHandler) List(c echo.Context) error {
    list, err := h.Facilities.ListActive(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list facilities failed"})
    }
    out := make([]facilityPayload, 0, len(list))
    for _, f := range list {
        out = append(out, toFacilityPayload(f))
    }
    return c.JSON(http.StatusOK, out)
}

// Get returns a single facility.  Soft-deleted facilities answer 404 just
// like missing ones.
func (h *FacilityHandler) Get(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
    }
    f, err := h.Facilities.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrFacilityNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load facility failed"})
    }
    if f.IsDeleted {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }
    return c.JSON(http.StatusOK, toFacilityPayload(f))
}

// Update merges the provided fields into the stored record and persists
// the result.  Absent fields keep their current value; present fields are
// validated the same way as on create.
func (h *FacilityHandler) Update(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
    }
    var req facilityReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx := c.Request().Context()
    f, err := h.Facilities.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrFacilityNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load facility failed"})
    }
    if f.IsDeleted {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
    }

    if req.Name != nil {
        if strings.TrimSpace(*req.Name) == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
        }
        f.Name = strings.TrimSpace(*req.Name)
    }
    if req.Description != nil {
        f.Description = *req.Description
    }
    if req.PricePerHour != nil {
        if *req.PricePerHour <= 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "pricePerHour must be positive"})
        }
        f.PricePerHourCents = toCents(*req.PricePerHour)
    }
    if req.Location != nil {
        f.Location = *req.Location
    }

    if err := h.Facilities.Update(ctx, f); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update facility failed"})
    }
    // Re-read so updated_at reflects this write.
    f, err = h.Facilities.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load facility failed"})
    }
    return c.JSON(http.StatusOK, toFacilityPayload(f))
}

// Delete soft-deletes the facility.  Existing bookings keep their
// reference; the facility simply stops being listable and bookable.
// Deleting twice answers 404, same as deleting a missing id.
func (h *FacilityHandler) Delete(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
    }
    f, err := h.Facilities.SoftDelete(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrFacilityNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete facility failed"})
    }
    return c.JSON(http.StatusOK, toFacilityPayload(f))
}
