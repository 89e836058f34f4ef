package processor

import (
	"context"
	"errors"
	"time"

	"redditactions/pkg/models"
)

// Outcome is what happened to a single saved item
type Outcome string

const (
	// OutcomeForwarded means the item was added and then unsaved
	OutcomeForwarded Outcome = "forwarded"
	// OutcomeUnsaveFailed means the item was added but is still saved
	OutcomeUnsaveFailed Outcome = "unsave_failed"
	// OutcomeForwardFailed means the add was rejected; the item stays saved
	OutcomeForwardFailed Outcome = "forward_failed"
	// OutcomeSkipped means the filter rejected the item
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDryRun means the item would have been forwarded
	OutcomeDryRun Outcome = "dry_run"
)

// Failed reports whether the outcome counts as a per-item failure
func (o Outcome) Failed() bool {
	return o == OutcomeForwardFailed || o == OutcomeUnsaveFailed
}

// ItemResult is the result of processing one item
type ItemResult struct {
	Item    models.SavedItem
	Outcome Outcome
	Reason  string // filter reason for skipped items
	Err     error
}

// Report summarizes a run
type Report struct {
	Results     []ItemResult
	Examined    int
	Forwarded   int
	Skipped     int
	DryRun      int
	Failed      int
	Interrupted bool
	StartedAt   time.Time
	Duration    time.Duration
}

func (r *Report) add(res ItemResult) {
	r.Results = append(r.Results, res)
	r.Examined++
	switch res.Outcome {
	case OutcomeForwarded:
		r.Forwarded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeDryRun:
		r.DryRun++
	case OutcomeUnsaveFailed:
		// the add went through even though the unsave did not
		r.Forwarded++
		r.Failed++
	case OutcomeForwardFailed:
		r.Failed++
	}
}

// Failures returns the results that need the user's attention
func (r *Report) Failures() []ItemResult {
	var out []ItemResult
	for _, res := range r.Results {
		if res.Outcome.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Exit codes
const (
	ExitOK          = 0
	ExitFatal       = 1
	ExitPartial     = 2
	ExitInterrupted = 130
)

// ExitCode maps a run's outcome to a process exit code. Per-item failures only
// change the exit code when strict is set.
func ExitCode(report *Report, runErr error, strict bool) int {
	switch {
	case runErr != nil && errors.Is(runErr, context.Canceled):
		return ExitInterrupted
	case runErr != nil:
		return ExitFatal
	case report == nil:
		return ExitOK
	case report.Interrupted:
		return ExitInterrupted
	case strict && report.Failed > 0:
		return ExitPartial
	default:
		return ExitOK
	}
}
