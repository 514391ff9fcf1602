package store

import "errors"

// ErrParseCorruption reports a backing document that exists but cannot be
// parsed. Readers may choose to treat it as an empty collection; writers
// refuse to overwrite it.
var ErrParseCorruption = errors.New("recipe document is corrupt")

// ErrPersistence reports a failure to read, lock, or write the backing
// document.
var ErrPersistence = errors.New("recipe document persistence failed")
