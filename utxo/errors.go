package utxo

import "errors"

var (
	// ErrAlreadyInUse indicates the slot or admin record is already initialized.
	ErrAlreadyInUse = errors.New("utxo: already in use")

	// ErrNotInitialized indicates the UTXO has not been initialized.
	ErrNotInitialized = errors.New("utxo: not initialized")

	// ErrWrongSeed indicates the derived address does not match the supplied cell.
	ErrWrongSeed = errors.New("utxo: wrong seed")

	// ErrUnsigned indicates a required authority is missing.
	ErrUnsigned = errors.New("utxo: unsigned")

	// ErrWrongAdmin indicates the admin cell is not at its derived address.
	ErrWrongAdmin = errors.New("utxo: wrong admin")

	// ErrAlreadyActivated indicates the UTXO is already active.
	ErrAlreadyActivated = errors.New("utxo: already activated")

	// ErrInvalidData indicates verification or content data failed the scheme's checks.
	ErrInvalidData = errors.New("utxo: invalid data")

	// ErrInvalidWitness indicates a malformed witness or a failed signature check.
	ErrInvalidWitness = errors.New("utxo: invalid witness")

	// ErrInvalidTransferData indicates a witness count mismatch or unbalanced transfer.
	ErrInvalidTransferData = errors.New("utxo: invalid transfer data")

	// ErrNotActive indicates an attempt to spend a UTXO that is not active.
	ErrNotActive = errors.New("utxo: not active")

	// ErrWrongModule indicates a record or account position names an unexpected module.
	ErrWrongModule = errors.New("utxo: wrong module")

	// ErrInvalidRecord indicates stored bytes do not decode as a record.
	ErrInvalidRecord = errors.New("utxo: invalid record encoding")
)

// codes fixes the numeric code reported for each error kind.
var codes = []error{
	ErrAlreadyInUse,
	ErrNotInitialized,
	ErrWrongSeed,
	ErrUnsigned,
	ErrWrongAdmin,
	ErrAlreadyActivated,
	ErrInvalidData,
	ErrInvalidWitness,
	ErrInvalidTransferData,
	ErrNotActive,
	ErrWrongModule,
	ErrInvalidRecord,
}

// Code returns the numeric code of the first error kind err wraps.
func Code(err error) (uint32, bool) {
	for i, kind := range codes {
		if errors.Is(err, kind) {
			return uint32(i), true
		}
	}
	return 0, false
}

// Kind returns the sentinel error for code, or nil if the code is unknown.
func Kind(code uint32) error {
	if int(code) >= len(codes) {
		return nil
	}
	return codes[code]
}
