package model

// Reporter emits user-facing progress and summary lines. It is constructed
// once per run and passed in explicitly; core logic never writes to process
// globals. Failure detail goes to the log, not to the reporter.
type Reporter interface {
	Printf(format string, args ...any)
}
