// Package replay submits a slate of matchups to a running hoopline service,
// reconciles the finished games and prints the resulting accuracy report.
package replay

import (
	"time"

	"github.com/okian/hoopline/pkg/logger"
)

// Config holds configuration for a replay run.
type Config struct {
	BaseURL    string        // Base URL of the service
	SlateFile  string        // YAML slate to replay
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional JSON file for the projection results
	DryRun     bool          // Project without recording or reconciling
	Logger     logger.Logger // Defaults to a discarding logger
}

// Stats holds replay statistics.
type Stats struct {
	GamesLoaded    int
	Projected      int
	Failed         int
	Reconciled     int
	ReconcileFails int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
