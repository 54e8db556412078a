package address

import "errors"

var (
	// ErrNoViableBump indicates no bump in 255..1 produced an off-curve address.
	ErrNoViableBump = errors.New("address: unable to find a viable bump")

	// ErrOnCurve indicates the candidate address is a valid curve point and
	// could therefore be controlled by a private key holder.
	ErrOnCurve = errors.New("address: derived address lies on the curve")

	// ErrMaxSeedLength indicates too many seeds or a seed longer than MaxSeedLen.
	ErrMaxSeedLength = errors.New("address: seed count or length exceeds limit")

	// ErrInvalidAddress indicates an encoded address could not be parsed.
	ErrInvalidAddress = errors.New("address: invalid address encoding")
)
