package testutil

import (
	"servicehub/pkg/model"

	"github.com/google/uuid"
)

const TestDate = "2030-05-14"

// NewUserID returns an identity no other test run will reuse.
func NewUserID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

type ListingBuilder struct {
	req model.ListingRequest
}

func NewListingBuilder() *ListingBuilder {
	return &ListingBuilder{
		req: model.ListingRequest{
			Title:       "Calculus tutoring " + uuid.NewString()[:6],
			Description: "One-on-one help with problem sets",
			Category:    "tutoring",
			HourlyRate:  25,
		},
	}
}

func (b *ListingBuilder) WithTitle(title string) *ListingBuilder {
	b.req.Title = title
	return b
}

func (b *ListingBuilder) WithCategory(category string) *ListingBuilder {
	b.req.Category = category
	return b
}

func (b *ListingBuilder) WithHourlyRate(rate float64) *ListingBuilder {
	b.req.HourlyRate = rate
	return b
}

func (b *ListingBuilder) Build() model.ListingRequest {
	return b.req
}

type BookingBuilder struct {
	req model.BookingRequest
}

func NewBookingBuilder(serviceID, providerID string) *BookingBuilder {
	return &BookingBuilder{
		req: model.BookingRequest{
			ServiceID:  serviceID,
			ProviderID: providerID,
			Date:       TestDate,
			Time:       "10:00",
			Duration:   2,
		},
	}
}

func (b *BookingBuilder) At(clock string, duration int) *BookingBuilder {
	b.req.Time = clock
	b.req.Duration = duration
	return b
}

func (b *BookingBuilder) OnDate(date string) *BookingBuilder {
	b.req.Date = date
	return b
}

func (b *BookingBuilder) WithMessage(text string) *BookingBuilder {
	b.req.Message = text
	return b
}

func (b *BookingBuilder) WithPrice(price float64) *BookingBuilder {
	b.req.TotalPrice = &price
	return b
}

func (b *BookingBuilder) Build() model.BookingRequest {
	return b.req
}
