package repository

import "errors"

// ErrNotFound is returned by repositories when the requested row does not
// exist. Services map it to their own domain-level errors.
var ErrNotFound = errors.New("not found")
