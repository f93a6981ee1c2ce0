package history

import "errors"

// ErrNoPrevious indicates no version exists below the current one.
var ErrNoPrevious = errors.New("no previous version to roll back to")

// ErrTableCreation indicates the history table could not be created.
var ErrTableCreation = errors.New("creating history table")
