package instance

import (
	"fmt"
	"os"
	"strings"
)

// ID names this worker process in logs. GOGO_WORKER_ID
// wins; otherwise hostname and pid are combined so replicas stay distinct.
func ID() string {
	if id := strings.TrimSpace(os.Getenv("GOGO_WORKER_ID")); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
