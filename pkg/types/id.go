package types

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// GenerateEventID generates a unique usage event ID with prefix
func GenerateEventID() string {
	return fmt.Sprintf("evt_%s", ksuid.New().String())
}

// GenerateConnectionID generates a unique connection ID with prefix
func GenerateConnectionID() string {
	return fmt.Sprintf("conn_%s", ksuid.New().String())
}

// GenerateAdminID generates a unique admin user ID with prefix
func GenerateAdminID() string {
	return fmt.Sprintf("adm_%s", ksuid.New().String())
}

// GenerateID generates a generic unique ID
func GenerateID() string {
	return ksuid.New().String()
}
