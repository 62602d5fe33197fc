package orchestrator

import (
	"os"
	"time"
)

var (
	// WorkflowTimeout bounds a whole multi-path run such as reset or force-update
	WorkflowTimeout = getTimeoutOrDefault("SUBSYNC_WORKFLOW_TIMEOUT", 60*time.Minute)
	// SyncTimeout bounds a single pull or fetch
	SyncTimeout = getTimeoutOrDefault("SUBSYNC_SYNC_TIMEOUT", 10*time.Minute)
	// JournalSaveTimeout bounds each journal write, even after the run context is canceled
	JournalSaveTimeout = getTimeoutOrDefault("SUBSYNC_JOURNAL_SAVE_TIMEOUT", 10*time.Second)
)

// getTimeoutOrDefault returns the duration set in envVar, or fallback when unset or invalid
func getTimeoutOrDefault(envVar string, fallback time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil && duration > 0 {
			return duration
		}
	}
	return fallback
}
