package processor

import (
	"context"
	"time"

	"redditactions/pkg/config"
	apperrors "redditactions/pkg/errors"
	"redditactions/pkg/filter"
	"redditactions/pkg/logger"
	"redditactions/pkg/models"
)

// Processor forwards saved items from a Source to a Destination, one at a time
type Processor struct {
	source Source
	dest   Destination
	filter *filter.Filter
	dryRun bool
	limit  int
	logger logger.Logger

	now      func() time.Time
	onResult func(ItemResult)
}

// Option configures a Processor
type Option func(*Processor)

// WithClock overrides time.Now, used by the age filters
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithResultHandler registers a callback invoked after every item
func WithResultHandler(fn func(ItemResult)) Option {
	return func(p *Processor) { p.onResult = fn }
}

// New creates a Processor
func New(source Source, dest Destination, cfg config.ProcessingConfig, log logger.Logger, opts ...Option) *Processor {
	if log == nil {
		log = logger.GetLogger()
	}
	p := &Processor{
		source: source,
		dest:   dest,
		filter: filter.New(cfg.Filter),
		dryRun: cfg.DryRun,
		limit:  cfg.Limit,
		logger: log.WithField("component", "processor"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Authenticate opens a session with both services. Either failing is fatal.
func (p *Processor) Authenticate(ctx context.Context) error {
	if err := p.source.Authenticate(ctx); err != nil {
		return asAuthError("source.authenticate", err)
	}
	if err := p.dest.Authenticate(ctx); err != nil {
		return asAuthError("destination.authenticate", err)
	}
	return nil
}

func asAuthError(op string, err error) error {
	if apperrors.KindOf(err) != "" || ctxErr(err) {
		return err
	}
	return apperrors.New(apperrors.KindAuth, op, "", err)
}

func ctxErr(err error) bool {
	return apperrors.Is(err, context.Canceled) || apperrors.Is(err, context.DeadlineExceeded)
}

// Run walks the saved listing once. Per-item failures are recorded in the
// report and never stop the run; a listing failure or cancellation does, and
// is returned alongside the partial report.
func (p *Processor) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: p.now()}
	defer func() { report.Duration = p.now().Sub(report.StartedAt) }()

	p.logger.InfoWithFields("Processing saved items", map[string]interface{}{
		"dry_run": p.dryRun,
		"limit":   p.limit,
	})

	it := p.source.Saved()
	for p.limit == 0 || report.Examined < p.limit {
		if !it.Next(ctx) {
			break
		}
		res := p.process(ctx, it.Item())
		report.add(res)

		logger.LogItem(p.logger, res.Item.ID, res.Item.URL, string(res.Outcome), res.Err)
		if p.onResult != nil {
			p.onResult(res)
		}
	}

	if err := ctx.Err(); err != nil {
		report.Interrupted = true
		p.logger.WarnWithFields("Run interrupted, remaining items stay saved", map[string]interface{}{
			"examined": report.Examined,
		})
		return report, err
	}
	if err := it.Err(); err != nil {
		p.logger.WithError(err).Error("Listing saved items failed")
		return report, err
	}

	p.logger.InfoWithFields("Run complete", map[string]interface{}{
		"examined":  report.Examined,
		"forwarded": report.Forwarded,
		"skipped":   report.Skipped,
		"dry_run":   report.DryRun,
		"failed":    report.Failed,
	})
	return report, nil
}

// process applies forward-then-unsave to one item
func (p *Processor) process(ctx context.Context, item models.SavedItem) ItemResult {
	if ok, reason := p.filter.Match(item, p.now()); !ok {
		return ItemResult{Item: item, Outcome: OutcomeSkipped, Reason: reason}
	}

	if p.dryRun {
		return ItemResult{Item: item, Outcome: OutcomeDryRun}
	}

	if err := p.dest.Add(ctx, item); err != nil {
		// leave it saved so a later run picks it up again
		return ItemResult{Item: item, Outcome: OutcomeForwardFailed, Err: err}
	}

	if err := p.source.Unsave(ctx, item); err != nil {
		// already forwarded; a later run may forward it a second time
		return ItemResult{Item: item, Outcome: OutcomeUnsaveFailed, Err: err}
	}

	return ItemResult{Item: item, Outcome: OutcomeForwarded}
}
