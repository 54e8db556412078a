package processor

import "errors"

var (
	// ErrUnknownProgram indicates an invocation addressed to neither module.
	ErrUnknownProgram = errors.New("processor: unknown program")

	// ErrDerivedSigner indicates a signer that no private key controls: a
	// module, the vault or a module-owned cell.
	ErrDerivedSigner = errors.New("processor: derived address cannot sign")

	// ErrModuleConflict indicates the base and verification modules share an id.
	ErrModuleConflict = errors.New("processor: base and verification module ids must differ")
)
