package model

import (
	"time"
)

type Booking struct {
	ID         string        `json:"id,omitempty" bson:"_id,omitempty"`
	ServiceID  string        `json:"service_id" bson:"service_id"`
	CustomerID string        `json:"customer_id" bson:"customer_id"`
	ProviderID string        `json:"provider_id" bson:"provider_id"`
	Date       string        `json:"date" bson:"date"`
	Time       string        `json:"time" bson:"time"`
	Duration   int           `json:"duration" bson:"duration"`
	Status     BookingStatus `json:"status" bson:"status"`
	TotalPrice float64       `json:"total_price" bson:"total_price"`
	Messages   []Message     `json:"messages" bson:"messages"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" bson:"updated_at"`
}

// Message is one entry of a booking's thread. Threads are append-only.
type Message struct {
	ID        string    `json:"id" bson:"id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Text      string    `json:"text" bson:"text"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// IsParty reports whether userID is the customer or the provider of b.
func (b *Booking) IsParty(userID string) bool {
	return userID != "" && (userID == b.CustomerID || userID == b.ProviderID)
}

// BookingRequest is the body of POST /bookings. The customer is always the caller.
type BookingRequest struct {
	ServiceID  string   `json:"service_id" validate:"required,mongodb"`
	ProviderID string   `json:"provider_id" validate:"required,min=1,max=128"`
	Date       string   `json:"date" validate:"required,calendar_date"`
	Time       string   `json:"time" validate:"required,clock_time"`
	Duration   int      `json:"duration" validate:"required,min=1,max=24"`
	TotalPrice *float64 `json:"total_price,omitempty" validate:"omitempty,min=0"`
	Message    string   `json:"message,omitempty" validate:"omitempty,max=2000"`
}

type StatusUpdate struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	ID     string        `json:"id"`
	Status BookingStatus `json:"status"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

// BookingPage is the body of GET /bookings.
type BookingPage struct {
	Bookings []*Booking `json:"bookings"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
}
