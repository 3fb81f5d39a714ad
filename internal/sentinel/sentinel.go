package sentinel

import "errors"

// Sentinel dependency errors. Storage backends and the cipher should return
// these (optionally wrapped) so services can translate them into domain
// errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidData = errors.New("invalid data")
	ErrUnavailable = errors.New("unavailable")
)
