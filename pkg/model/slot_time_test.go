package model

import "testing"

func TestClockMinutes(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"14:00", 840, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"12:60", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			got, err := ClockMinutes(tt.clock)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ClockMinutes(%q) error = %v, wantErr %v", tt.clock, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ClockMinutes(%q) = %d, want %d", tt.clock, got, tt.want)
			}
		})
	}
}

func TestIsCalendarDate(t *testing.T) {
	valid := []string{"2025-03-10", "2024-02-29"}
	invalid := []string{"2025-02-29", "2025-3-10", "10/03/2025", "2025-03-10T14:00:00Z", ""}

	for _, s := range valid {
		if !IsCalendarDate(s) {
			t.Errorf("IsCalendarDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsCalendarDate(s) {
			t.Errorf("IsCalendarDate(%q) = true, want false", s)
		}
	}
}

func TestSlotInterval_Overlaps(t *testing.T) {
	mustInterval := func(clock string, hours int) SlotInterval {
		i, err := NewSlotInterval(clock, hours)
		if err != nil {
			t.Fatalf("NewSlotInterval(%q, %d): %v", clock, hours, err)
		}
		return i
	}

	base := mustInterval("14:00", 2)

	tests := []struct {
		name  string
		other SlotInterval
		want  bool
	}{
		{"contained", mustInterval("15:00", 1), true},
		{"same", mustInterval("14:00", 2), true},
		{"straddles start", mustInterval("13:00", 2), true},
		{"straddles end", mustInterval("15:30", 2), true},
		{"touches end", mustInterval("16:00", 1), false},
		{"touches start", mustInterval("12:00", 2), false},
		{"disjoint", mustInterval("08:00", 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps() is not symmetric")
			}
		})
	}
}

func TestSlotInterval_FitsInDay(t *testing.T) {
	late, _ := NewSlotInterval("22:00", 2)
	if !late.FitsInDay() {
		t.Errorf("22:00 + 2h should end exactly at midnight")
	}
	over, _ := NewSlotInterval("23:00", 2)
	if over.FitsInDay() {
		t.Errorf("23:00 + 2h should not fit in the day")
	}
	if _, err := NewSlotInterval("10:00", 0); err == nil {
		t.Errorf("zero duration should be rejected")
	}
}

func TestNewSlotInterval_DurationBounds(t *testing.T) {
	tests := []struct {
		hours   int
		wantErr bool
	}{
		{1, false},
		{24, false},
		{25, true},
		{-3, true},
		{153722867280912931, true},
	}

	for _, tt := range tests {
		i, err := NewSlotInterval("00:00", tt.hours)
		if (err != nil) != tt.wantErr {
			t.Fatalf("NewSlotInterval(00:00, %d) error = %v, wantErr %v", tt.hours, err, tt.wantErr)
		}
		if err == nil && i.End != tt.hours*60 {
			t.Errorf("End = %d, want %d", i.End, tt.hours*60)
		}
	}
}
