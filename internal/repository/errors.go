// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrSlotTaken signals that a requested booking window
// collides with an existing reservation.
package repository

import "errors"

// ErrSlotTaken is returned when a new booking's [start,end) window
// overlaps a non-canceled booking for the same facility and date.
// Handlers should translate this into an HTTP 409 response.
var ErrSlotTaken = errors.New("time slot already booked")

// ErrAlreadyCanceled is returned when cancellation is requested for a
// booking that has already been canceled. Handlers should translate
// this into an HTTP 400 response; the operation has no side effects.
var ErrAlreadyCanceled = errors.New("booking already canceled")
