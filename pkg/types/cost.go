package types

import "time"

// CostStatus labels a team or user against the sustainability target
type CostStatus string

const (
	StatusHealthy CostStatus = "healthy"
	StatusAtRisk  CostStatus = "at_risk"
)

// IsValid checks if the status is one of the known values
func (s CostStatus) IsValid() bool {
	switch s {
	case StatusHealthy, StatusAtRisk:
		return true
	default:
		return false
	}
}

// TeamCostRecord is a team's aggregated usage cost over the query window
type TeamCostRecord struct {
	TeamID              string     `json:"team_id"`
	TeamName            string     `json:"team_name"`
	RequestCount        int        `json:"request_count"`
	TotalComputeSeconds float64    `json:"total_seconds"`
	EstimatedCost       float64    `json:"estimated_cost"`
	UserCount           int        `json:"user_count"`
	CostPerUser         float64    `json:"cost_per_user"`
	Status              CostStatus `json:"status"`
}

// UserCostRecord is one user's aggregated usage cost within a single team
type UserCostRecord struct {
	UserID              string     `json:"user_id"`
	RequestCount        int        `json:"request_count"`
	TotalComputeSeconds float64    `json:"total_seconds"`
	EstimatedCost       float64    `json:"estimated_cost"`
	Status              CostStatus `json:"status"`
}

// UnattributedBucket collects a team's events that carried no user identity
type UnattributedBucket struct {
	RequestCount  int     `json:"request_count"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// TeamUserCosts is the per-user cost breakdown for one team. The user records
// plus the unattributed bucket always sum to the team's total cost for the
// same window and rate.
type TeamUserCosts struct {
	TeamID            string             `json:"team_id"`
	Users             []UserCostRecord   `json:"users"`
	Unattributed      UnattributedBucket `json:"unattributed"`
	TargetCostPerUser float64            `json:"target_cost_per_user"`
}

// CostReport is the platform-wide cost summary returned to the dashboard
type CostReport struct {
	TotalCost     float64          `json:"total_cost"`
	TotalRequests int              `json:"total_requests"`
	Teams         []TeamCostRecord `json:"teams"`
	CalculatedAt  time.Time        `json:"calculated_at"`
}

// OverviewReport summarizes platform activity over the default window
type OverviewReport struct {
	TeamCount           int       `json:"team_count"`
	TotalRequests       int       `json:"total_requests"`
	TotalComputeSeconds float64   `json:"total_seconds"`
	TotalCost           float64   `json:"total_cost"`
	ActiveConnections   int       `json:"active_connections"`
	WindowDays          int       `json:"window_days"`
	CalculatedAt        time.Time `json:"calculated_at"`
}
