package utils

import (
    "errors"
    "fmt"
    "strconv"
    "strings"
)

// Slot is a half-open [Start,End) time window expressed in minutes since
// midnight.  All booking and availability arithmetic works on these
// integers; the HH:MM strings exist only at the API boundary.
type Slot struct {
    StartMinutes int
    EndMinutes   int
}

// Opening hours of every facility.  The public catalog is the fixed
// two-hour grid 08:00–10:00 through 18:00–20:00.
const (
    OpeningMinutes = 8 * 60
    ClosingMinutes = 20 * 60
    SlotMinutes    = 120
)

// ErrInvalidClock reports a time-of-day string that is not HH:MM.
var ErrInvalidClock = errors.New("invalid time of day, expected HH:MM")

// ParseClock converts an "HH:MM" wall-clock string into minutes since
// midnight.  It accepts 00:00 through 23:59 and rejects everything else.
func ParseClock(s string) (int, error) {
    parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
    if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
        return 0, ErrInvalidClock
    }
    h, err := strconv.Atoi(parts[0])
    if err != nil || h < 0 || h > 23 {
        return 0, ErrInvalidClock
    }
    m, err := strconv.Atoi(parts[1])
    if err != nil || m < 0 || m > 59 {
        return 0, ErrInvalidClock
    }
    return h*60 + m, nil
}

// FormatClock renders minutes since midnight back to HH:MM.
func FormatClock(minutes int) string {
    return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FixedSlots returns the static slot catalog in ascending order.
func FixedSlots() []Slot {
    out := make([]Slot, 0, (ClosingMinutes-OpeningMinutes)/SlotMinutes)
    for start := OpeningMinutes; start+SlotMinutes <= ClosingMinutes; start += SlotMinutes {
        out = append(out, Slot{StartMinutes: start, EndMinutes: start + SlotMinutes})
    }
    return out
}

// Overlaps reports whether two half-open windows intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
    return aStart < bEnd && bStart < aEnd
}

// FreeSlots returns the fixed catalog minus every slot that intersects a
// booked window.  Availability for a facility/date is the complement of
// its non-canceled bookings, not the raw catalog.
func FreeSlots(booked []Slot) []Slot {
    free := make([]Slot, 0)
    for _, s := range FixedSlots() {
        taken := false
        for _, b := range booked {
            if Overlaps(s.StartMinutes, s.EndMinutes, b.StartMinutes, b.EndMinutes) {
                taken = true
                break
            }
        }
        if !taken {
            free = append(free, s)
        }
    }
    return free
}

// PayableCents computes the amount owed for a window at an hourly rate:
// rate × duration in hours, carried out in cents to stay exact for the
// minute durations the API accepts.
func PayableCents(pricePerHourCents int64, startMinutes, endMinutes int) int64 {
    return pricePerHourCents * int64(endMinutes-startMinutes) / 60
}
