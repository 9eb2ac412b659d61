package model

import (
	"fmt"
	"time"
)

// Status is the terminal state of one symbol's ingestion.
type Status int

const (
	StatusSaved Status = iota + 1
	StatusSkippedLowQuality
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSaved:
		return "SAVED"
	case StatusSkippedLowQuality:
		return "SKIPPED_LOW_QUALITY"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Stage is the last step a symbol completed.
// A failed outcome carries the stage it failed from.
type Stage string

const (
	StageStart       Stage = "START"
	StageRateLimited Stage = "RATE_LIMITED"
	StageFetched     Stage = "FETCHED"
	StageNormalized  Stage = "NORMALIZED"
	StageAccepted    Stage = "ACCEPTED"
	StageRejected    Stage = "REJECTED"
)

// Outcome is the result of processing one symbol. It is only reported, never persisted.
type Outcome struct {
	Symbol   string
	Category string // empty in interactive mode
	Key      string
	Status   Status
	Stage    Stage
	Records  int
	Detail   string
	Err      error
}

// Saved builds a successful outcome.
func Saved(category, symbol, key string, records int) Outcome {
	return Outcome{
		Symbol:   symbol,
		Category: category,
		Key:      key,
		Status:   StatusSaved,
		Stage:    StageAccepted,
		Records:  records,
		Detail:   fmt.Sprintf("saved %d records to %s", records, key),
	}
}

// Skipped builds a low-quality outcome.
func Skipped(category, symbol string, records, min int) Outcome {
	return Outcome{
		Symbol:   symbol,
		Category: category,
		Status:   StatusSkippedLowQuality,
		Stage:    StageRejected,
		Records:  records,
		Detail:   fmt.Sprintf("only %d entries, need %d", records, min),
	}
}

// Failed builds a failed outcome from the stage the error interrupted.
func Failed(category, symbol string, stage Stage, err error) Outcome {
	return Outcome{
		Symbol:   symbol,
		Category: category,
		Status:   StatusFailed,
		Stage:    stage,
		Detail:   err.Error(),
		Err:      err,
	}
}

func (o Outcome) String() string {
	name := o.Symbol
	if o.Category != "" {
		name = fmt.Sprintf("%s (%s)", o.Symbol, o.Category)
	}
	switch o.Status {
	case StatusSaved:
		return fmt.Sprintf("✅ %s saved: %d records", name, o.Records)
	case StatusSkippedLowQuality:
		return fmt.Sprintf("⚠️ %s has only %d entries. Skipping.", name, o.Records)
	default:
		return fmt.Sprintf("❌ Failed to fetch %s: %s", name, o.Detail)
	}
}

// CategorySummary aggregates outcomes of one category.
type CategorySummary struct {
	Category string
	Saved    int
	Skipped  int
	Failed   int
}

// Total returns the number of symbols visited.
func (c CategorySummary) Total() int { return c.Saved + c.Skipped + c.Failed }

// RunSummary aggregates the outcomes of one sweep.
type RunSummary struct {
	ID         string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Categories []CategorySummary
	Saved      int
	Skipped    int
	Failed     int
	Records    int
	Aborted    bool
}

// Total returns the number of symbols visited.
func (r RunSummary) Total() int { return r.Saved + r.Skipped + r.Failed }

// Summarize aggregates outcomes, keeping categories in first-seen order.
func Summarize(outcomes []Outcome) RunSummary {
	var sum RunSummary
	index := make(map[string]int)
	for _, o := range outcomes {
		i, ok := index[o.Category]
		if !ok {
			i = len(sum.Categories)
			index[o.Category] = i
			sum.Categories = append(sum.Categories, CategorySummary{Category: o.Category})
		}
		cs := &sum.Categories[i]
		switch o.Status {
		case StatusSaved:
			cs.Saved++
			sum.Saved++
			sum.Records += o.Records
		case StatusSkippedLowQuality:
			cs.Skipped++
			sum.Skipped++
		default:
			cs.Failed++
			sum.Failed++
		}
	}
	return sum
}
