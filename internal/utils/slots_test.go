package utils

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"14:30", 870, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"8:00", 0, true}, // single-digit hour rejected
		{"12-30", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(480); got != "08:00" {
		t.Errorf("FormatClock(480) = %q, want 08:00", got)
	}
	if got := FormatClock(1439); got != "23:59" {
		t.Errorf("FormatClock(1439) = %q, want 23:59", got)
	}
}

func TestFixedSlots(t *testing.T) {
	slots := FixedSlots()
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots between 08:00 and 20:00, got %d", len(slots))
	}
	if slots[0].StartMinutes != OpeningMinutes {
		t.Errorf("first slot starts at %d, want %d", slots[0].StartMinutes, OpeningMinutes)
	}
	if slots[len(slots)-1].EndMinutes != ClosingMinutes {
		t.Errorf("last slot ends at %d, want %d", slots[len(slots)-1].EndMinutes, ClosingMinutes)
	}
	for i, s := range slots {
		if s.EndMinutes-s.StartMinutes != SlotMinutes {
			t.Errorf("slot %d has length %d, want %d", i, s.EndMinutes-s.StartMinutes, SlotMinutes)
		}
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	// Touching windows do not overlap: [8:00,10:00) and [10:00,12:00).
	if Overlaps(480, 600, 600, 720) {
		t.Error("adjacent windows must not overlap")
	}
	if !Overlaps(480, 600, 540, 660) {
		t.Error("partially intersecting windows must overlap")
	}
	if !Overlaps(480, 720, 540, 600) {
		t.Error("a contained window must overlap")
	}
	if Overlaps(480, 600, 720, 840) {
		t.Error("disjoint windows must not overlap")
	}
}

func TestFreeSlots(t *testing.T) {
	// No bookings: the full catalog is free.
	if got := FreeSlots(nil); len(got) != 6 {
		t.Fatalf("empty day should expose 6 slots, got %d", len(got))
	}

	// A booking 09:00-11:00 straddles the first two grid slots and
	// knocks out both.
	booked := []Slot{{StartMinutes: 540, EndMinutes: 660}}
	got := FreeSlots(booked)
	if len(got) != 4 {
		t.Fatalf("expected 4 free slots, got %d", len(got))
	}
	if got[0].StartMinutes != 720 {
		t.Errorf("first free slot starts at %d, want 720 (12:00)", got[0].StartMinutes)
	}

	// A booking exactly on a grid slot removes only that slot.
	booked = []Slot{{StartMinutes: 480, EndMinutes: 600}}
	got = FreeSlots(booked)
	if len(got) != 5 {
		t.Fatalf("expected 5 free slots, got %d", len(got))
	}
	if got[0].StartMinutes != 600 {
		t.Errorf("first free slot starts at %d, want 600 (10:00)", got[0].StartMinutes)
	}
}

func TestPayableCents(t *testing.T) {
	// 20.00/hour for two hours is exactly 40.00.
	if got := PayableCents(2000, 840, 960); got != 4000 {
		t.Errorf("2h at 2000c/h = %d, want 4000", got)
	}
	// 90 minutes at 10.00/hour is 15.00.
	if got := PayableCents(1000, 600, 690); got != 1500 {
		t.Errorf("90min at 1000c/h = %d, want 1500", got)
	}
	if got := PayableCents(2000, 600, 600); got != 0 {
		t.Errorf("zero-length window = %d, want 0", got)
	}
}
