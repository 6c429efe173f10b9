package models

type VariationStatus string

const (
	VariationOpen       VariationStatus = "open"
	VariationInProgress VariationStatus = "in_progress"
	VariationCompleted  VariationStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type PricingModel string

const (
	PricingFixed  PricingModel = "fixed"
	PricingHourly PricingModel = "hourly"
	PricingHybrid PricingModel = "hybrid"
)

// Variation is a client-facing change order against a job.
type Variation struct {
	ID           ID              `json:"id"`
	JobID        ID              `json:"jobId"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Status       VariationStatus `json:"status"`
	Priority     Priority        `json:"priority"`
	PricingModel PricingModel    `json:"pricingModel"`
	ClientAmount Number          `json:"clientAmount"`
	HourlyRate   Number          `json:"hourlyRate,omitempty"`
	ActualHours  Number          `json:"actualHours"`
	CreatedAt    Timestamp       `json:"createdAt"`
}

type SubcontractorContract struct {
	ID              ID        `json:"id"`
	SubcontractorID *ID       `json:"subcontractorId,omitempty"`
	TeamID          *ID       `json:"teamId,omitempty"`
	JobID           ID        `json:"jobId"`
	Title           string    `json:"title,omitempty"`
	BaseAmount      Number    `json:"baseAmount"`
	VariationAmount Number    `json:"variationAmount,omitempty"`
	TotalValue      Number    `json:"totalValue"`
	TotalPaid       Number    `json:"totalPaid"`
	Outstanding     Number    `json:"outstanding"`
	Status          string    `json:"status,omitempty"`
	StartDate       Timestamp `json:"startDate"`
}
