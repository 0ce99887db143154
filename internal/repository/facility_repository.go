// This file defines the repository for bookable facilities. A facility is
// a venue (court, pitch, hall) with an hourly rate. Deletion is a soft
// delete: the row is flagged instead of removed so existing bookings keep
// a valid reference.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/sports-facility-booking/internal/model"
)

// ErrFacilityNotFound is returned when a facility cannot be found or has
// been soft-deleted where deletion matters.
var ErrFacilityNotFound = errors.New("facility not found")

// FacilityRepo encapsulates all database queries related to facilities.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo constructs a FacilityRepo with the provided DB handle.
func NewFacilityRepo(db *sql.DB) *FacilityRepo {
	return &FacilityRepo{db: db}
}

const facilityColumns = "id, name, description, price_per_hour_cents, location, is_deleted, created_at, updated_at"

// Create inserts a new facility.  On success the ID field is populated
// with the auto-generated value and the timestamps are read back so the
// caller receives a fully populated record.
func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	const qInsert = "INSERT INTO facilities (name, description, price_per_hour_cents, location) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, f.Name, f.Description, f.PricePerHourCents, f.Location)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	const qSelect = "SELECT created_at, updated_at FROM facilities WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, f.ID).Scan(&f.CreatedAt, &f.UpdatedAt)
}

// GetByID fetches a facility regardless of its soft-delete flag.  Callers
// that must reject deleted facilities (e.g. new bookings) check IsDeleted.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (*model.Facility, error) {
	const q = "SELECT " + facilityColumns + " FROM facilities WHERE id = ?"
	var f model.Facility
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.Name, &f.Description, &f.PricePerHourCents, &f.Location,
		&f.IsDeleted, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListActive returns all facilities that have not been soft-deleted,
// ordered by id.  This backs the public listing.
func (r *FacilityRepo) ListActive(ctx context.Context) ([]*model.Facility, error) {
	const q = "SELECT " + facilityColumns + " FROM facilities WHERE is_deleted = 0 ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Facility, 0)
	for rows.Next() {
		f := new(model.Facility)
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.PricePerHourCents,
			&f.Location, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update persists the merged facility record.  The handler performs the
// partial merge and re-validates; this method writes every mutable column.
// sql.ErrNoRows is returned when the facility does not exist or was
// already deleted.
func (r *FacilityRepo) Update(ctx context.Context, f *model.Facility) error {
	const q = `UPDATE facilities
	           SET name = ?, description = ?, price_per_hour_cents = ?, location = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, q, f.Name, f.Description, f.PricePerHourCents, f.Location, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete flips the is_deleted flag.  The record stays in place; only
// the public listing and new bookings stop seeing it.
func (r *FacilityRepo) SoftDelete(ctx context.Context, id uint64) (*model.Facility, error) {
	const q = "UPDATE facilities SET is_deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_deleted = 0"
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrFacilityNotFound
	}
	return r.GetByID(ctx, id)
}
