package address

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	// MaxSeeds is the maximum number of seeds accepted by a derivation.
	MaxSeeds = 16

	// MaxSeedLen is the maximum length of a single seed.
	MaxSeedLen = 32

	// MaxBump is the first bump tried by FindAddress.
	MaxBump = 255

	derivedMarker = "ProgramDerivedAddress"
)

// CurveChecker decides whether 32 bytes decode to a point on the curve used
// for ordinary key-controlled addresses.
type CurveChecker interface {
	OnCurve(b [Size]byte) bool
}

// Ed25519Curve reports ed25519 point validity.
type Ed25519Curve struct{}

// OnCurve returns true if b is a valid compressed ed25519 point.
func (Ed25519Curve) OnCurve(b [Size]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}

// Deriver computes derived addresses under a given curve scheme.
type Deriver struct {
	curve CurveChecker
}

// NewDeriver returns a Deriver using curve. A nil curve selects Ed25519Curve.
func NewDeriver(curve CurveChecker) *Deriver {
	if curve == nil {
		curve = Ed25519Curve{}
	}
	return &Deriver{curve: curve}
}

// Default is the Deriver used by package-level helpers.
var Default = NewDeriver(nil)

// CreateAddress hashes seeds, bump and owner into a candidate address and
// fails with ErrOnCurve when the candidate is a valid curve point.
func (d *Deriver) CreateAddress(seeds [][]byte, bump byte, owner Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Zero, fmt.Errorf("%w: %d seeds", ErrMaxSeedLength, len(seeds))
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return Zero, fmt.Errorf("%w: seed %d is %d bytes", ErrMaxSeedLength, i, len(s))
		}
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(owner[:])
	h.Write([]byte(derivedMarker))

	var candidate Address
	copy(candidate[:], h.Sum(nil))
	if d.curve.OnCurve(candidate) {
		return Zero, ErrOnCurve
	}
	return candidate, nil
}

// FindAddress scans bumps from MaxBump down to 1 and returns the first
// off-curve address together with the bump that produced it. The result is
// a pure function of (seeds, owner).
func (d *Deriver) FindAddress(seeds [][]byte, owner Address) (Address, byte, error) {
	for bump := MaxBump; bump > 0; bump-- {
		addr, err := d.CreateAddress(seeds, byte(bump), owner)
		switch {
		case err == nil:
			return addr, byte(bump), nil
		case errors.Is(err, ErrOnCurve):
			continue
		default:
			return Zero, 0, err
		}
	}
	return Zero, 0, ErrNoViableBump
}

// Derive is the single-seed form of FindAddress used for UTXO slots.
func (d *Deriver) Derive(seed []byte, owner Address) (Address, byte, error) {
	return d.FindAddress([][]byte{seed}, owner)
}

// Derive computes the derived address for seed under owner using Default.
func Derive(seed []byte, owner Address) (Address, byte, error) {
	return Default.Derive(seed, owner)
}
