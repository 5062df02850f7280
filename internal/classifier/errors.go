package classifier

import "errors"

// Sentinel errors for classifier operations.
var (
	ErrEmptyResponse = errors.New("empty classification response")
	ErrCompletion    = errors.New("completion failed")
)
