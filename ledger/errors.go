package ledger

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")

	// ErrAccountNotFound indicates no account exists at the given key.
	ErrAccountNotFound = errors.New("ledger: account not found")

	// ErrAccountExists indicates the key already holds an allocated account.
	ErrAccountExists = errors.New("ledger: account already exists")

	// ErrNotOwner indicates a module tried to write an account it does not own.
	ErrNotOwner = errors.New("ledger: caller does not own account")

	// ErrDataSize indicates written data does not match the allocated size.
	ErrDataSize = errors.New("ledger: data size does not match allocation")

	// ErrInsufficientFunds indicates a debit larger than the account balance.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrRentExemption indicates a debit would leave a data account below its
	// rent-exempt minimum.
	ErrRentExemption = errors.New("ledger: account would fall below rent-exempt minimum")

	// ErrBalanceOverflow indicates a credit would overflow the balance.
	ErrBalanceOverflow = errors.New("ledger: balance overflow")

	// ErrCorruptAccount indicates a persisted account could not be decoded.
	ErrCorruptAccount = errors.New("ledger: corrupt account entry")
)
