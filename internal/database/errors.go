package database

import "errors"

// ErrInvalidURL indicates the connection URL could not be parsed.
var ErrInvalidURL = errors.New("invalid connection URL")

// ErrUnsupportedScheme indicates no registered driver serves the URL scheme.
var ErrUnsupportedScheme = errors.New("unsupported connection URL scheme")

// ErrConnectionFailed indicates a connection could not be established.
var ErrConnectionFailed = errors.New("database connection failed")
