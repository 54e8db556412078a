package verifier

import "errors"

// ErrNilParam indicates a required dependency was nil.
var ErrNilParam = errors.New("verifier: nil parameter")
