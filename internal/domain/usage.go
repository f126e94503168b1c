package domain

import "time"

// Quota is the provider request quota as last reported in response headers.
// Nil fields mean the provider has not reported a value yet.
type Quota struct {
	Remaining *int `json:"requests_remaining"`
	Used      *int `json:"requests_used"`
}

// UsageRecord is one logged provider call.
type UsageRecord struct {
	Endpoint          string
	RequestsUsed      int
	RequestsRemaining *int
	Timestamp         time.Time
}

// UsageSummary aggregates usage over a period.
type UsageSummary struct {
	TotalUsed         int  `json:"total_used"`
	RequestsRemaining *int `json:"requests_remaining"`
}
