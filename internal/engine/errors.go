package engine

import "errors"

// ErrNothingInstalled indicates rollback was attempted on a database with
// no installed version.
var ErrNothingInstalled = errors.New("no version installed, nothing to roll back")

// ErrBadRollbackTarget indicates the rollback target is not below the
// current version.
var ErrBadRollbackTarget = errors.New("rollback target must be below the current version")

// ErrRollbackScriptMissing indicates a required rollback script is absent.
var ErrRollbackScriptMissing = errors.New("rollback script not found")

// ErrRollbackFailed wraps a SQL error that occurred mid-rollback. The
// whole rollback transaction is aborted and history is left untouched.
var ErrRollbackFailed = errors.New("rollback failed")
