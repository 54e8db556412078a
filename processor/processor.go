// Package processor routes encoded invocations to the base module and the
// verification module and runs each one inside a single ledger batch.
package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/instruction"
	"github.com/bitfsorg/libutxo-go/ledger"
	"github.com/bitfsorg/libutxo-go/sigverify"
	"github.com/bitfsorg/libutxo-go/utxo"
	"github.com/bitfsorg/libutxo-go/verifier"
)

// Invocation is one instruction as submitted by a client.
type Invocation struct {
	Program  address.Address   // base or verification module
	Accounts []address.Address // ordered account list of the request
	Signers  []address.Address // keys that signed the enclosing transaction
	Data     []byte            // encoded instruction
}

// Processor owns one base module and one verification module deployment.
type Processor struct {
	store    *utxo.Store
	verifier *verifier.Program
	log      zerolog.Logger
}

// New wires a base module and verification module pair. A nil deriver or
// scheme selects the defaults.
func New(baseID, verificationID address.Address, deriver *address.Deriver, scheme sigverify.Scheme, log zerolog.Logger) (*Processor, error) {
	if baseID == verificationID {
		return nil, fmt.Errorf("%w: %s", ErrModuleConflict, baseID)
	}
	initPrometheusMetrics()

	store := utxo.NewStore(baseID, deriver)
	prog, err := verifier.New(verificationID, store, scheme, log)
	if err != nil {
		return nil, err
	}
	return &Processor{
		store:    store,
		verifier: prog,
		log:      log.With().Str("module", "processor").Logger(),
	}, nil
}

// Store returns the base module.
func (p *Processor) Store() *utxo.Store { return p.store }

// Verifier returns the verification module.
func (p *Processor) Verifier() *verifier.Program { return p.verifier }

// Process decodes inv and applies it to l. Either every mutation of the
// instruction is committed or none is.
func (p *Processor) Process(l ledger.Ledger, inv Invocation) error {
	start := time.Now()

	ins, err := p.decode(inv)
	if err != nil {
		p.observe("unknown", start, err)
		return err
	}
	if len(inv.Accounts) < ins.MinAccounts() {
		err = fmt.Errorf("%w: %s needs %d, got %d", instruction.ErrNotEnoughAccounts,
			ins.Name(), ins.MinAccounts(), len(inv.Accounts))
		p.observe(ins.Name(), start, err)
		return err
	}

	var moved uint64
	err = l.Update(func(tx ledger.Tx) error {
		if err := p.checkSigners(tx, ins, inv.Signers); err != nil {
			return err
		}
		var err error
		moved, err = p.execute(tx, ins, inv)
		return err
	})
	p.observe(ins.Name(), start, err)
	if err != nil {
		return err
	}

	switch ins.(type) {
	case *instruction.DepositSol:
		prometheusDeposited.Add(float64(moved))
	case *instruction.WithdrawSol:
		prometheusWithdrawn.Add(float64(moved))
	}
	return nil
}

func (p *Processor) decode(inv Invocation) (instruction.Instruction, error) {
	switch inv.Program {
	case p.store.Module():
		return instruction.DecodeBase(inv.Data)
	case p.verifier.ID():
		return instruction.DecodeVerification(inv.Data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, inv.Program)
	}
}

// checkSigners rejects signers that only module authority can act for:
// the module ids, the vault, the cell an InitializeUTXO derives, and any
// account owned by either module. Derived addresses are off-curve and have
// no private key, so a runtime never reports them as transaction signers.
func (p *Processor) checkSigners(tx ledger.Tx, ins instruction.Instruction, signers []address.Address) error {
	derived := map[address.Address]struct{}{
		p.store.Module():          {},
		p.verifier.ID():           {},
		p.verifier.AdminAddress(): {},
	}
	if init, ok := ins.(*instruction.InitializeUTXO); ok {
		if target, err := p.store.ExpectedAddress(init.AccountSeed, init.VerificationModule); err == nil {
			derived[target] = struct{}{}
		}
	}

	for _, signer := range signers {
		if _, ok := derived[signer]; ok {
			return fmt.Errorf("%w: %s", ErrDerivedSigner, signer)
		}
		acct, err := tx.Account(signer)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if acct.Owner == p.store.Module() || acct.Owner == p.verifier.ID() {
			return fmt.Errorf("%w: %s is owned by %s", ErrDerivedSigner, signer, acct.Owner)
		}
	}
	return nil
}

// execute runs ins inside tx and returns the native value it moved.
func (p *Processor) execute(tx ledger.Tx, ins instruction.Instruction, inv Invocation) (uint64, error) {
	auth := address.Signers(inv.Signers...)
	acc := inv.Accounts

	switch ins := ins.(type) {
	case *instruction.InitializeUTXO:
		_, err := p.store.Initialize(tx, acc[0], acc[1], utxo.InitializeArgs{
			VerificationModule: ins.VerificationModule,
			VerificationData:   ins.VerificationData,
			ContentData:        ins.ContentData,
			AccountSeed:        ins.AccountSeed,
		}, auth)
		return 0, err

	case *instruction.ActivateUTXO:
		return 0, p.store.Activate(tx, acc[0], auth)

	case *instruction.DeactivateUTXO:
		return 0, p.store.Deactivate(tx, acc[0], auth)

	case *instruction.InitializeAdmin:
		return 0, p.verifier.InitializeAdmin(tx, acc[0], acc[1], auth)

	case *instruction.DepositSol:
		err := p.verifier.Deposit(tx, verifier.DepositAccounts{
			Base:  acc[0],
			Payer: acc[1],
			Admin: acc[2],
			UTXO:  acc[3],
		}, ins.Amount, auth)
		return ins.Amount, err

	case *instruction.WithdrawSol:
		rec, err := p.store.Load(tx, acc[3])
		if err != nil {
			return 0, err
		}
		amount, err := rec.Amount()
		if err != nil {
			return 0, err
		}
		return amount, p.verifier.Withdraw(tx, verifier.WithdrawAccounts{
			Base:     acc[0],
			Receiver: acc[1],
			Admin:    acc[2],
			UTXO:     acc[3],
		}, ins.Witness)

	case *instruction.Transfer:
		return 0, p.verifier.Transfer(tx, acc[0], acc[1:], verifier.TransferArgs{
			Witness:     ins.Witness,
			InputCount:  ins.InputCount,
			OutputCount: ins.OutputCount,
		})

	default:
		return 0, fmt.Errorf("%w: %T", instruction.ErrInvalidInstruction, ins)
	}
}

func (p *Processor) observe(name string, start time.Time, err error) {
	prometheusInstructions.WithLabelValues(name).Inc()
	prometheusInstructionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := ErrorKind(err)
		prometheusInstructionErrors.WithLabelValues(name, kind).Inc()
		p.log.Warn().Err(err).Str("instruction", name).Str("kind", kind).Msg("instruction rejected")
		return
	}
	p.log.Debug().Str("instruction", name).Dur("took", time.Since(start)).Msg("instruction applied")
}

// ledgerErrors are the runtime failures reported by kind.
var ledgerErrors = []error{
	ledger.ErrAccountNotFound,
	ledger.ErrAccountExists,
	ledger.ErrNotOwner,
	ledger.ErrDataSize,
	ledger.ErrInsufficientFunds,
	ledger.ErrRentExemption,
	ledger.ErrBalanceOverflow,
	ledger.ErrCorruptAccount,
	instruction.ErrInvalidInstruction,
	instruction.ErrNotEnoughAccounts,
	ErrUnknownProgram,
	ErrDerivedSigner,
}

// ErrorKind returns the message of the sentinel err wraps, or "internal".
func ErrorKind(err error) string {
	if code, ok := utxo.Code(err); ok {
		return utxo.Kind(code).Error()
	}
	for _, kind := range ledgerErrors {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal"
}
