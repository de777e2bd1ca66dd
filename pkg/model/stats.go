package model

type ProviderStats struct {
	TotalEarnings  float64 `json:"total_earnings"`
	CompletedCount int64   `json:"completed_count"`
	PendingCount   int64   `json:"pending_count"`
	ConfirmedCount int64   `json:"confirmed_count"`
}

// SlotWindow describes a booked interval without revealing who holds it.
type SlotWindow struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration int    `json:"duration"`
}

type Availability struct {
	HasConflict bool        `json:"has_conflict"`
	Conflict    *SlotWindow `json:"conflict,omitempty"`
}
