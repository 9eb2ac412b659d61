// Package recorder keeps a history of sweep runs for later analysis.
package recorder

import "PriceLineup/internal/model"

// Recorder persists aggregated sweep summaries. Per-symbol outcomes are
// never stored, only their counts.
type Recorder interface {
	RecordRun(run *model.RunSummary) error
	RecentRuns(limit int) ([]model.RunSummary, error)
	Close() error
}
