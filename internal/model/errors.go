package model

import "errors"

var (
	// ErrNotFound marks a lookup that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrMalformedExport marks an export file whose content does not match
	// the expected shape. The file is skipped; the run continues.
	ErrMalformedExport = errors.New("malformed export file")
	// ErrNoLoginID marks a user record carrying neither username nor email.
	// Such records are never submitted.
	ErrNoLoginID = errors.New("user record has neither username nor email")
	// ErrDuplicateLoginID marks a user whose login id already appeared
	// earlier in the same batch.
	ErrDuplicateLoginID = errors.New("duplicate login id within batch")
)
