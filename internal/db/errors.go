package db

import "errors"

// ErrNotFound is returned by every lookup whose subject does not exist.
// Handlers map it to the rendered not-found page.
var ErrNotFound = errors.New("record not found")
