package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// This is a sample test demonstrating the testing pattern
// Full integration tests would use testcontainers for real PostgreSQL

func TestEventStore_Record(t *testing.T) {
	// Skip if not running integration tests
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	// In real tests, you would:
	// 1. Start a PostgreSQL container with testcontainers
	// 2. Run store.Migrate
	// 3. Create store instance
	//
	// For now, this is a template showing the test structure

	t.Run("records usage event", func(t *testing.T) {
		// Setup
		// pool := setupTestDB(t)
		// defer pool.Close()
		// s := store.New(pool)

		event := &types.UsageEvent{
			ID:             types.GenerateEventID(),
			TeamID:         "team_test",
			UserID:         "user_test",
			OccurredAt:     time.Now().UTC(),
			ComputeSeconds: 1.5,
			ToolName:       "search",
			Success:        true,
		}
		require.NotEmpty(t, event.ID)

		// Execute
		// err := s.Events.Record(ctx, event)

		// Assert
		// require.NoError(t, err)

		// Verify
		// listed, err := s.Events.ListSince(ctx, event.OccurredAt.Add(-time.Minute))
		// require.NoError(t, err)
		// assert.Len(t, listed, 1)

		t.Log("Test template - implement with testcontainers")
	})

	t.Run("empty user id round trips as unattributed", func(t *testing.T) {
		t.Log("Test template - verify NULL user_id comes back as empty string")
	})
}

func TestSessionEventStore_StaleOpenConnections(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	t.Run("finds connections with no disconnect past cutoff", func(t *testing.T) {
		t.Log("Test template - implement with testcontainers")
	})

	t.Run("ignores connections that already disconnected", func(t *testing.T) {
		t.Log("Test template - implement with testcontainers")
	})
}
