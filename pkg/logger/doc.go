// Package logger provides structured logging for redditactions.
//
// It wraps zerolog behind a small Logger interface. Output goes to stdout as
// colored console lines when stdout is a terminal and as JSON lines otherwise;
// the logging.format setting forces one or the other. An optional log file
// always receives JSON.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("component", "reddit")
//	log.InfoWithFields("Fetched page", map[string]interface{}{"items": 25})
//
// Tests use NewTestLogger to capture messages or NewNopLogger to discard them.
package logger
