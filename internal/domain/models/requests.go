package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type DashboardRequest struct {
	Timeframes []int `query:"tf" json:"tf" validate:"omitempty,min=1,max=7,dive,gte=1,lte=720"`
}

type SummaryRequest struct {
	Timeframes []int `query:"tf" json:"tf" validate:"omitempty,min=1,max=7,dive,gte=1,lte=720"`
}
