package model

import "time"

type ListingStatus string

const (
	ListingActive  ListingStatus = "active"
	ListingDeleted ListingStatus = "deleted"
)

// ServiceListing is a service offered by a provider. Bookings reference it by ID.
type ServiceListing struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty"`
	ProviderID  string        `json:"provider_id" bson:"provider_id"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description" bson:"description"`
	Category    string        `json:"category" bson:"category"`
	HourlyRate  float64       `json:"hourly_rate" bson:"hourly_rate"`
	Status      ListingStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

type ListingRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=120"`
	Description string  `json:"description" validate:"omitempty,max=4000"`
	Category    string  `json:"category" validate:"required,listing_category"`
	HourlyRate  float64 `json:"hourly_rate" validate:"gte=0,lte=10000"`
}

// ListingUpdate is a partial update. Nil fields keep their stored value.
type ListingUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty"`
}

var ListingCategories = []string{
	"tutoring",
	"moving",
	"tech-support",
	"cleaning",
	"design",
	"photography",
	"other",
}

func IsListingCategory(category string) bool {
	for _, c := range ListingCategories {
		if c == category {
			return true
		}
	}
	return false
}
