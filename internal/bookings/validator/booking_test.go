package validator

import (
	"strings"
	"testing"

	"servicehub/pkg/logger"
	"servicehub/pkg/model"
)

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		ServiceID:  "65f1a2b3c4d5e6f7a8b9c0d1",
		ProviderID: "provider-1",
		Date:       "2025-03-10",
		Time:       "14:00",
		Duration:   2,
	}
}

func TestBookingValidator_Validate(t *testing.T) {
	v := NewBookingValidator(logger.Nop(), 8)

	tests := []struct {
		name      string
		mutate    func(r *model.BookingRequest)
		wantError bool
		wantField string
	}{
		{
			name:   "valid request",
			mutate: func(r *model.BookingRequest) {},
		},
		{
			name:      "missing service",
			mutate:    func(r *model.BookingRequest) { r.ServiceID = "" },
			wantError: true,
			wantField: "ServiceID",
		},
		{
			name:      "service is not an object id",
			mutate:    func(r *model.BookingRequest) { r.ServiceID = "svc-1" },
			wantError: true,
			wantField: "ServiceID",
		},
		{
			name:      "bad date",
			mutate:    func(r *model.BookingRequest) { r.Date = "2025-13-01" },
			wantError: true,
			wantField: "Date",
		},
		{
			name:      "non numeric time",
			mutate:    func(r *model.BookingRequest) { r.Time = "ab:cd" },
			wantError: true,
			wantField: "Time",
		},
		{
			name:      "zero duration",
			mutate:    func(r *model.BookingRequest) { r.Duration = 0 },
			wantError: true,
			wantField: "Duration",
		},
		{
			name:      "duration above configured max",
			mutate:    func(r *model.BookingRequest) { r.Duration = 9 },
			wantError: true,
			wantField: "Duration",
		},
		{
			name:      "runs past midnight",
			mutate:    func(r *model.BookingRequest) { r.Time = "23:00"; r.Duration = 2 },
			wantError: true,
			wantField: "Duration",
		},
		{
			name:   "ends exactly at midnight",
			mutate: func(r *model.BookingRequest) { r.Time = "22:00"; r.Duration = 2 },
		},
		{
			name: "negative price",
			mutate: func(r *model.BookingRequest) {
				p := -1.0
				r.TotalPrice = &p
			},
			wantError: true,
			wantField: "TotalPrice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.Validate(req)
			if (err != nil) != tt.wantError {
				t.Fatalf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
			if !tt.wantError {
				return
			}

			verrs, ok := err.(ValidationErrors)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestBookingValidator_ValidateSlot(t *testing.T) {
	v := NewBookingValidator(logger.Nop(), 8)

	tests := []struct {
		name      string
		clock     string
		hours     int
		wantError bool
	}{
		{"within cap", "09:00", 8, false},
		{"ends at midnight", "22:00", 2, false},
		{"above cap", "09:00", 9, true},
		{"overflowing duration", "14:00", 153722867280912931, true},
		{"negative duration", "14:00", -1, true},
		{"bad clock", "7pm", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSlot(tt.clock, tt.hours)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateSlot(%q, %d) error = %v, wantError %v", tt.clock, tt.hours, err, tt.wantError)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "Date", Message: "bad"},
		{Field: "Time", Message: "worse"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "2 error(s)") || !strings.Contains(msg, "Time: worse") {
		t.Errorf("unexpected message: %s", msg)
	}
	if (ValidationErrors{}).Error() != "" {
		t.Errorf("empty ValidationErrors should render as empty string")
	}
}
