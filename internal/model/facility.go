package model

import "time"

// Facility is a bookable resource (a court, a pitch, a hall) persisted in
// the `facilities` table.  Prices are stored in cents per hour so that
// payable amounts can be derived with integer arithmetic.  Deleting a
// facility only flips IsDeleted; bookings made before the deletion keep
// referencing the row.
//
// Fields:
//  ID                – primary key identifier.
//  Name              – human-friendly facility name.
//  Description       – free-form description shown in listings.
//  PricePerHourCents – positive hourly rate in cents.
//  Location          – address or venue description.
//  IsDeleted         – soft-delete flag.
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type Facility struct {
    ID                uint64    // facilities.id
    Name              string    // facilities.name
    Description       string    // facilities.description
    PricePerHourCents int64     // facilities.price_per_hour_cents
    Location          string    // facilities.location
    IsDeleted         bool      // facilities.is_deleted
    CreatedAt         time.Time // facilities.created_at
    UpdatedAt         time.Time // facilities.updated_at
}
