// Package instruction defines the requests accepted by the base module and
// the verification module, and their binary encoding: a one-byte variant tag
// followed by the fields, with u32 little-endian length prefixes on
// variable-length values and little-endian integers.
package instruction

import (
	"fmt"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/utxo"
)

// Base module tags.
const (
	TagInitializeUTXO byte = iota
	TagActivateUTXO
	TagDeactivateUTXO
)

// Verification module tags.
const (
	TagDepositSol byte = iota
	TagWithdrawSol
	TagTransfer
	TagInitializeAdmin
)

// Instruction is a decoded request.
type Instruction interface {
	// Tag returns the variant tag within the target module.
	Tag() byte
	// Name returns a stable name used in logs and metrics.
	Name() string
	// MinAccounts returns how many accounts the request references at least.
	MinAccounts() int

	encodeFields(e *encoder)
}

// InitializeUTXO creates an inactive UTXO. Accounts: [utxo, payer].
type InitializeUTXO struct {
	VerificationModule address.Address
	VerificationData   []byte
	ContentData        []byte
	AccountSeed        [utxo.SeedSize]byte
}

// ActivateUTXO marks a UTXO active. Accounts: [utxo].
type ActivateUTXO struct{}

// DeactivateUTXO marks a UTXO inactive. Accounts: [utxo].
type DeactivateUTXO struct{}

// InitializeAdmin creates the vault record. Accounts: [admin, payer].
type InitializeAdmin struct{}

// DepositSol locks Amount and activates a UTXO.
// Accounts: [base module, payer, admin, utxo].
type DepositSol struct {
	Amount uint64
}

// WithdrawSol spends a UTXO back to native value.
// Accounts: [base module, receiver, admin, utxo].
type WithdrawSol struct {
	Witness []byte
}

// Transfer spends inputs into outputs.
// Accounts: [base module, outputs..., inputs...].
type Transfer struct {
	Witness     [][]byte
	InputCount  uint8
	OutputCount uint8
}

func (*InitializeUTXO) Tag() byte  { return TagInitializeUTXO }
func (*ActivateUTXO) Tag() byte    { return TagActivateUTXO }
func (*DeactivateUTXO) Tag() byte  { return TagDeactivateUTXO }
func (*InitializeAdmin) Tag() byte { return TagInitializeAdmin }
func (*DepositSol) Tag() byte      { return TagDepositSol }
func (*WithdrawSol) Tag() byte     { return TagWithdrawSol }
func (*Transfer) Tag() byte        { return TagTransfer }

func (*InitializeUTXO) Name() string  { return "initialize_utxo" }
func (*ActivateUTXO) Name() string    { return "activate_utxo" }
func (*DeactivateUTXO) Name() string  { return "deactivate_utxo" }
func (*InitializeAdmin) Name() string { return "initialize_admin" }
func (*DepositSol) Name() string      { return "deposit_sol" }
func (*WithdrawSol) Name() string     { return "withdraw_sol" }
func (*Transfer) Name() string        { return "transfer" }

func (*InitializeUTXO) MinAccounts() int  { return 2 }
func (*ActivateUTXO) MinAccounts() int    { return 1 }
func (*DeactivateUTXO) MinAccounts() int  { return 1 }
func (*InitializeAdmin) MinAccounts() int { return 2 }
func (*DepositSol) MinAccounts() int      { return 4 }
func (*WithdrawSol) MinAccounts() int     { return 4 }
func (t *Transfer) MinAccounts() int      { return 1 + int(t.OutputCount) + int(t.InputCount) }

func (i *InitializeUTXO) encodeFields(e *encoder) {
	e.fixed(i.VerificationModule[:])
	e.bytes(i.VerificationData)
	e.bytes(i.ContentData)
	e.fixed(i.AccountSeed[:])
}

func (*ActivateUTXO) encodeFields(*encoder)    {}
func (*DeactivateUTXO) encodeFields(*encoder)  {}
func (*InitializeAdmin) encodeFields(*encoder) {}

func (d *DepositSol) encodeFields(e *encoder) { e.u64(d.Amount) }

func (w *WithdrawSol) encodeFields(e *encoder) { e.bytes(w.Witness) }

func (t *Transfer) encodeFields(e *encoder) {
	e.u32(uint32(len(t.Witness)))
	for _, w := range t.Witness {
		e.bytes(w)
	}
	e.u8(t.InputCount)
	e.u8(t.OutputCount)
}

// Encode serializes ins as tag || fields.
func Encode(ins Instruction) []byte {
	e := &encoder{buf: []byte{ins.Tag()}}
	ins.encodeFields(e)
	return e.buf
}

// DecodeBase decodes a base module request.
func DecodeBase(data []byte) (Instruction, error) {
	d := &decoder{data: data}
	var ins Instruction
	switch tag := d.u8("tag"); {
	case d.err != nil:
		return nil, d.err
	case tag == TagInitializeUTXO:
		i := &InitializeUTXO{}
		i.VerificationModule = d.address("verification module")
		i.VerificationData = d.bytes("verification data")
		i.ContentData = d.bytes("content data")
		copy(i.AccountSeed[:], d.take(utxo.SeedSize, "account seed"))
		ins = i
	case tag == TagActivateUTXO:
		ins = &ActivateUTXO{}
	case tag == TagDeactivateUTXO:
		ins = &DeactivateUTXO{}
	default:
		return nil, fmt.Errorf("%w: unknown base tag %d", ErrInvalidInstruction, tag)
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return ins, nil
}

// DecodeVerification decodes a verification module request.
func DecodeVerification(data []byte) (Instruction, error) {
	d := &decoder{data: data}
	var ins Instruction
	switch tag := d.u8("tag"); {
	case d.err != nil:
		return nil, d.err
	case tag == TagDepositSol:
		ins = &DepositSol{Amount: d.u64("amount")}
	case tag == TagWithdrawSol:
		ins = &WithdrawSol{Witness: d.bytes("witness")}
	case tag == TagTransfer:
		t := &Transfer{}
		t.Witness = d.byteVecs("witness")
		t.InputCount = d.u8("input count")
		t.OutputCount = d.u8("output count")
		ins = t
	case tag == TagInitializeAdmin:
		ins = &InitializeAdmin{}
	default:
		return nil, fmt.Errorf("%w: unknown verification tag %d", ErrInvalidInstruction, tag)
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return ins, nil
}
