package ledger

const (
	// AccountStorageOverhead is the per-account metadata size charged on top of data.
	AccountStorageOverhead = 128

	// DefaultLamportsPerByteYear is the default rent rate.
	DefaultLamportsPerByteYear = 3480

	// DefaultExemptionThreshold is the default number of years prepaid for exemption.
	DefaultExemptionThreshold = 2
)

// Rent describes how much native value an account must hold to be exempt.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

// DefaultRent returns the default rent schedule.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// MinimumBalance returns the rent-exempt balance for an account of size bytes.
func (r Rent) MinimumBalance(size uint64) uint64 {
	return (AccountStorageOverhead + size) * r.LamportsPerByteYear * r.ExemptionThreshold
}
