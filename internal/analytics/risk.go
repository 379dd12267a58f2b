package analytics

import "github.com/symone-ai/symone-admin/pkg/types"

// ClassifyCost labels a cost-per-user figure against the sustainability
// target. Strictly greater than the target is at_risk; exactly at the target
// is healthy.
func ClassifyCost(costPerUser, targetCostPerUser float64) types.CostStatus {
	if costPerUser > targetCostPerUser {
		return types.StatusAtRisk
	}
	return types.StatusHealthy
}
