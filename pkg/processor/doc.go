// Package processor runs the saved-items loop: read each saved item from the
// source, forward it to the destination, then unsave it.
//
// Items are handled strictly one after another. A rejected forward leaves the
// item saved for the next run and an unsave failure after a successful
// forward is recorded and skipped over; neither stops the run. Only fatal
// errors (auth, listing) and context cancellation end a run early.
//
//	p := processor.New(redditClient, instapaperClient, cfg.Processing, log)
//	if err := p.Authenticate(ctx); err != nil {
//	    return err
//	}
//	report, err := p.Run(ctx)
//	os.Exit(processor.ExitCode(report, err, cfg.Processing.Strict))
package processor
