// Package instance names the running process in logs.
package instance

import (
	"os"
	"strings"
)

const defaultID = "local"

var envKeys = []string{"CATALOG_INSTANCE_ID", "DYNO", "HOSTNAME"}

// ID returns the first platform-provided instance name, or "local".
func ID() string {
	for _, key := range envKeys {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return defaultID
}
