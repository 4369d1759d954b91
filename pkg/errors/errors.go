package album_errors

import "errors"

// Common errors
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrInvalidPartNumbers   = errors.New("invalid part numbers")
	ErrTooLarge             = errors.New("file too large")
	ErrStorageNotConfigured = errors.New("storage is not configured")
	ErrIncompleteUpload     = errors.New("upload finalized without a location")
	ErrRateLimited          = errors.New("rate limited")
	ErrAccessDenied         = errors.New("access denied")
)
