package query

import "errors"

// Sentinel errors returned by the viewer-facing operations. Match them with
// [errors.Is]; the wrapped message carries the recipe id.
var (
	ErrNotFound        = errors.New("recipe not found")
	ErrForbidden       = errors.New("not allowed")
	ErrUnauthenticated = errors.New("sign-in required")
)
