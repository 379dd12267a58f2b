package types

// ZombieCandidate is a (team, user) group whose sessions show sustained idle
// time relative to actual work. IdleRatio is seconds of idle time per tool
// execution; nil means no tools ran at all, which ranks as maximally idle.
type ZombieCandidate struct {
	TeamID              string   `json:"team_id"`
	TeamName            string   `json:"team_name"`
	UserID              string   `json:"user_id,omitempty"`
	SessionCount        int      `json:"session_count"`
	AvgSessionHours     float64  `json:"avg_session_hours"`
	TotalTools          int      `json:"total_tools"`
	IdleRatio           *float64 `json:"idle_ratio,omitempty"`
	LongestSessionHours float64  `json:"longest_session_hours"`
}

// ZombieReport is the ranked zombie candidate list with remediation advice.
// Message is set when session tracking has no data yet, so callers can tell
// "no zombies" from "no data".
type ZombieReport struct {
	Zombies         []ZombieCandidate `json:"zombies"`
	Recommendations []string          `json:"recommendations"`
	Message         string            `json:"message,omitempty"`
}
