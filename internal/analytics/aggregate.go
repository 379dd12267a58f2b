package analytics

import (
	"sort"
	"time"

	"github.com/symone-ai/symone-admin/pkg/types"
)

// AggregateCosts folds usage events inside the trailing window into per-team
// cost records. Totals cover every in-window event; the team list is sorted by
// estimated cost descending (team ID ascending on ties, for determinism) and
// truncated to topN. An empty window is a valid zero-value result.
func AggregateCosts(events []types.UsageEvent, teamNames map[string]string, now time.Time, windowDays, topN int, cfg *Config) *types.CostReport {
	cutoff := now.AddDate(0, 0, -windowDays)

	type teamAgg struct {
		requests int
		seconds  float64
		users    map[string]struct{}
	}

	teams := make(map[string]*teamAgg)
	totalSeconds := 0.0
	totalRequests := 0

	for _, ev := range events {
		if ev.OccurredAt.Before(cutoff) {
			continue
		}
		agg, ok := teams[ev.TeamID]
		if !ok {
			agg = &teamAgg{users: make(map[string]struct{})}
			teams[ev.TeamID] = agg
		}
		agg.requests++
		agg.seconds += ev.ComputeSeconds
		if ev.UserID != "" {
			agg.users[ev.UserID] = struct{}{}
		}
		totalSeconds += ev.ComputeSeconds
		totalRequests++
	}

	records := make([]types.TeamCostRecord, 0, len(teams))
	for teamID, agg := range teams {
		cost := agg.seconds * cfg.CostPerComputeSecond
		userCount := len(agg.users)

		// Teams with zero attributed users use denominator 1: a deliberate
		// floor, not a missing-data error
		denominator := userCount
		if denominator < 1 {
			denominator = 1
		}
		costPerUser := cost / float64(denominator)

		records = append(records, types.TeamCostRecord{
			TeamID:              teamID,
			TeamName:            teamNames[teamID],
			RequestCount:        agg.requests,
			TotalComputeSeconds: agg.seconds,
			EstimatedCost:       cost,
			UserCount:           userCount,
			CostPerUser:         costPerUser,
			Status:              ClassifyCost(costPerUser, cfg.TargetCostPerUser),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].EstimatedCost != records[j].EstimatedCost {
			return records[i].EstimatedCost > records[j].EstimatedCost
		}
		return records[i].TeamID < records[j].TeamID
	})

	if len(records) > topN {
		records = records[:topN]
	}

	return &types.CostReport{
		TotalCost:     totalSeconds * cfg.CostPerComputeSecond,
		TotalRequests: totalRequests,
		Teams:         records,
		CalculatedAt:  now.UTC(),
	}
}
