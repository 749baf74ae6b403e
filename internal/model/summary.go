package model

// ReconcileResult reports one reconciliation pass. Created and Failed are
// kept separate so that "nothing was missing" and "creates failed" remain
// distinguishable.
type ReconcileResult struct {
	Created int
	Failed  int
}

// FileOutcome reports the processing of one user export file. Submitted is
// always defined, even when the batch call itself failed.
type FileOutcome struct {
	File        string
	Submitted   int
	Skipped     int
	Deactivated int
	StatusCode  int
	Err         error
}

// OK reports whether the file was processed without failure. A file that
// submitted nothing has no batch response to judge.
func (o FileOutcome) OK() bool {
	if o.Err != nil {
		return false
	}
	if o.Submitted == 0 {
		return true
	}
	return o.StatusCode >= 200 && o.StatusCode < 300
}

// Summary aggregates the counts of one migration run.
type Summary struct {
	RolesCreated     int
	TenantsCreated   int
	UsersProcessed   int
	UsersCreated     int
	UsersSkipped     int
	UsersDeactivated int
	FilesProcessed   int
	FilesFailed      int
}
