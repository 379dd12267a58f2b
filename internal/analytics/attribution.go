package analytics

import (
	"sort"
	"time"

	"github.com/symone-ai/symone-admin/pkg/types"
)

// ResolveUserCosts partitions one team's in-window events into per-user cost
// records plus a single unattributed bucket for events that carried no user
// identity. Unattributed events are never dropped and never assigned to a
// guessed user: user costs plus the bucket always reconcile to the team total.
func ResolveUserCosts(teamID string, events []types.UsageEvent, now time.Time, windowDays, topN int, cfg *Config) *types.TeamUserCosts {
	cutoff := now.AddDate(0, 0, -windowDays)

	type userAgg struct {
		requests int
		seconds  float64
	}

	users := make(map[string]*userAgg)
	var unattrRequests int
	var unattrSeconds float64

	for _, ev := range events {
		if ev.TeamID != teamID || ev.OccurredAt.Before(cutoff) {
			continue
		}
		if ev.UserID == "" {
			unattrRequests++
			unattrSeconds += ev.ComputeSeconds
			continue
		}
		agg, ok := users[ev.UserID]
		if !ok {
			agg = &userAgg{}
			users[ev.UserID] = agg
		}
		agg.requests++
		agg.seconds += ev.ComputeSeconds
	}

	records := make([]types.UserCostRecord, 0, len(users))
	for userID, agg := range users {
		cost := agg.seconds * cfg.CostPerComputeSecond
		records = append(records, types.UserCostRecord{
			UserID:              userID,
			RequestCount:        agg.requests,
			TotalComputeSeconds: agg.seconds,
			EstimatedCost:       cost,
			Status:              ClassifyCost(cost, cfg.TargetCostPerUser),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].EstimatedCost != records[j].EstimatedCost {
			return records[i].EstimatedCost > records[j].EstimatedCost
		}
		return records[i].UserID < records[j].UserID
	})

	if len(records) > topN {
		records = records[:topN]
	}

	return &types.TeamUserCosts{
		TeamID: teamID,
		Users:  records,
		Unattributed: types.UnattributedBucket{
			RequestCount:  unattrRequests,
			EstimatedCost: unattrSeconds * cfg.CostPerComputeSecond,
		},
		TargetCostPerUser: cfg.TargetCostPerUser,
	}
}
