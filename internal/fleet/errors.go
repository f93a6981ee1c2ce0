package fleet

import "errors"

// ErrNoTargets indicates no connection target could be resolved from the
// configuration.
var ErrNoTargets = errors.New("no connection targets configured")

// ErrUnknownTarget indicates the named target is not in the configuration.
var ErrUnknownTarget = errors.New("unknown connection target")

// ErrTimedOut marks a unit of work still running when the fleet deadline
// expired. The database-side work may yet complete: the outcome is
// unknown, not rolled back.
var ErrTimedOut = errors.New("timed out, outcome unknown")
