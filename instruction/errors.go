package instruction

import "errors"

var (
	// ErrInvalidInstruction indicates instruction data that does not decode.
	ErrInvalidInstruction = errors.New("instruction: invalid instruction data")

	// ErrNotEnoughAccounts indicates the account list is shorter than the request needs.
	ErrNotEnoughAccounts = errors.New("instruction: not enough accounts")
)
