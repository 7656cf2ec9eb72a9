package tracking

import "errors"

var (
	// ErrActivityNotFound indicates the activity does not exist or is not
	// owned by the caller.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrEntryNotFound indicates the time entry does not exist.
	ErrEntryNotFound = errors.New("time entry not found")
	// ErrNotOwner indicates the time entry belongs to another user.
	ErrNotOwner = errors.New("access denied")
	// ErrEntryRunning indicates the user already has a running time entry.
	ErrEntryRunning = errors.New("another time entry is already running")
	// ErrEntryNotRunning indicates a stop was attempted on a closed entry.
	ErrEntryNotRunning = errors.New("time entry is not running")
)
