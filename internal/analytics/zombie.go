package analytics

import (
	"fmt"
	"sort"

	"github.com/symone-ai/symone-admin/pkg/types"
)

// DetectZombies scans reconstructed sessions for connection groups holding
// live connections open while doing little or no work. Groups are keyed by
// (team, user); sessions without user identity group at the team level.
//
// A group becomes a candidate when it has at least minSessions sessions and
// either its idle ratio exceeds idleThreshold seconds per tool, or it executed
// no tools at all across a non-trivial session duration. A nil idle ratio
// means zero tools ran: maximally idle, never a division error.
func DetectZombies(sessions []types.Session, teamNames map[string]string, minSessions int, idleThreshold, minZeroToolSeconds float64, topN int) *types.ZombieReport {
	type groupKey struct {
		teamID string
		userID string
	}
	type groupAgg struct {
		sessionCount  int
		totalDuration float64 // seconds
		totalIdle     float64
		totalTools    int
		longest       float64 // seconds
	}

	groups := make(map[groupKey]*groupAgg)
	for _, s := range sessions {
		key := groupKey{teamID: s.TeamID, userID: s.UserID}
		agg, ok := groups[key]
		if !ok {
			agg = &groupAgg{}
			groups[key] = agg
		}
		agg.sessionCount++
		dur := s.DurationSeconds()
		agg.totalDuration += dur
		agg.totalIdle += s.IdleSeconds
		agg.totalTools += s.ToolExecutionCount
		if dur > agg.longest {
			agg.longest = dur
		}
	}

	candidates := make([]types.ZombieCandidate, 0)
	for key, agg := range groups {
		if agg.sessionCount < minSessions {
			continue
		}

		var idleRatio *float64
		if agg.totalTools > 0 {
			r := agg.totalIdle / float64(agg.totalTools)
			idleRatio = &r
		}

		reportable := false
		switch {
		case idleRatio == nil:
			// Zero tools: zombie only past the noise floor, so instant
			// connect/disconnect churn does not false-positive
			reportable = agg.longest > minZeroToolSeconds
		case *idleRatio > idleThreshold:
			reportable = true
		}
		if !reportable {
			continue
		}

		candidates = append(candidates, types.ZombieCandidate{
			TeamID:              key.teamID,
			TeamName:            teamNames[key.teamID],
			UserID:              key.userID,
			SessionCount:        agg.sessionCount,
			AvgSessionHours:     agg.totalDuration / float64(agg.sessionCount) / 3600,
			TotalTools:          agg.totalTools,
			IdleRatio:           idleRatio,
			LongestSessionHours: agg.longest / 3600,
		})
	}

	// Infinite (nil) idle ratio ranks highest; ties break on longest session,
	// then on group identity for determinism
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.IdleRatio == nil && b.IdleRatio != nil:
			return true
		case a.IdleRatio != nil && b.IdleRatio == nil:
			return false
		case a.IdleRatio != nil && b.IdleRatio != nil && *a.IdleRatio != *b.IdleRatio:
			return *a.IdleRatio > *b.IdleRatio
		}
		if a.LongestSessionHours != b.LongestSessionHours {
			return a.LongestSessionHours > b.LongestSessionHours
		}
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		return a.UserID < b.UserID
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	return &types.ZombieReport{
		Zombies:         candidates,
		Recommendations: buildRecommendations(candidates, idleThreshold),
	}
}

// buildRecommendations derives advisory remediation text from the dominant
// pattern in the candidate set. Advisory only, never control logic.
func buildRecommendations(candidates []types.ZombieCandidate, idleThreshold float64) []string {
	if len(candidates) == 0 {
		return []string{}
	}

	recs := make([]string, 0, 3)

	zeroTool := 0
	var finiteSum float64
	finiteCount := 0
	teams := make(map[string]struct{})
	for _, c := range candidates {
		if c.IdleRatio == nil {
			zeroTool++
		} else {
			finiteSum += *c.IdleRatio
			finiteCount++
		}
		teams[c.TeamID] = struct{}{}
	}

	if zeroTool > 0 {
		recs = append(recs, fmt.Sprintf(
			"Enforce an idle connection timeout: %d group(s) keep connections open without executing any tools", zeroTool))
	}

	if finiteCount > 0 && finiteSum/float64(finiteCount) > 2*idleThreshold {
		recs = append(recs, "Consider a shorter connection timeout policy; average idle time per tool execution is well above the threshold")
	}

	if len(candidates) >= 3 && len(teams) <= len(candidates)/3 {
		recs = append(recs, "Idle sessions are concentrated in a few teams; reach out about client configurations that hold connections open without work")
	} else {
		recs = append(recs, "Review client keepalive and reconnect settings for the listed teams")
	}

	return recs
}
