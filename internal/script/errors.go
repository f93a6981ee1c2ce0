package script

import "errors"

// ErrDirNotFound indicates the script directory does not exist or cannot
// be listed.
var ErrDirNotFound = errors.New("script directory not found")

// ErrScriptUnreadable indicates a matched script file could not be read.
var ErrScriptUnreadable = errors.New("script file unreadable")
