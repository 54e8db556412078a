package verifier

import (
	"fmt"
	"math/bits"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/ledger"
	"github.com/bitfsorg/libutxo-go/sigverify"
	"github.com/bitfsorg/libutxo-go/utxo"
)

// TransferArgs carries one witness per input and the split of the account list.
type TransferArgs struct {
	Witness     [][]byte
	InputCount  uint8
	OutputCount uint8
}

// Transfer activates outputs and spends inputs. accounts holds the outputs
// followed by the inputs. Every output is activated before any input witness
// is checked, because each input signs keccak(input || outputs...). The
// batch must be discarded if Transfer returns an error: flags already
// flipped are not undone here.
func (p *Program) Transfer(tx ledger.Tx, base address.Address, accounts []address.Address, args TransferArgs) error {
	if err := p.checkBase(base); err != nil {
		return err
	}
	nIn, nOut := int(args.InputCount), int(args.OutputCount)
	if len(args.Witness) != nIn {
		return fmt.Errorf("%w: %d witnesses for %d inputs", utxo.ErrInvalidTransferData, len(args.Witness), nIn)
	}
	if len(accounts) != nOut+nIn {
		return fmt.Errorf("%w: %d accounts for %d outputs and %d inputs",
			utxo.ErrInvalidTransferData, len(accounts), nOut, nIn)
	}
	seen := make(map[address.Address]struct{}, len(accounts))
	for _, a := range accounts {
		if _, dup := seen[a]; dup {
			return fmt.Errorf("%w: %s referenced twice", utxo.ErrInvalidTransferData, a)
		}
		seen[a] = struct{}{}
	}

	outputs := accounts[:nOut]
	inputs := accounts[nOut:]

	var outputSum uint64
	for _, target := range outputs {
		rec, err := p.spendable(tx, target)
		if err != nil {
			return err
		}
		if rec.IsActive {
			return fmt.Errorf("%w: output %s", utxo.ErrAlreadyActivated, target)
		}
		if len(rec.VerificationData) != sigverify.PublicKeyLength {
			return fmt.Errorf("%w: output %s verification data is %d bytes, want %d",
				utxo.ErrInvalidData, target, len(rec.VerificationData), sigverify.PublicKeyLength)
		}
		amount, err := rec.Amount()
		if err != nil {
			return err
		}
		if outputSum, err = addAmount(outputSum, amount); err != nil {
			return err
		}
		proof, err := p.authorityFor(rec)
		if err != nil {
			return err
		}
		if err := p.base.Activate(tx, target, proof); err != nil {
			return err
		}
	}

	var inputSum uint64
	for i, target := range inputs {
		rec, err := p.spendable(tx, target)
		if err != nil {
			return err
		}
		if !rec.IsActive {
			return fmt.Errorf("%w: input %s", utxo.ErrNotActive, target)
		}
		amount, err := rec.Amount()
		if err != nil {
			return err
		}
		if inputSum, err = addAmount(inputSum, amount); err != nil {
			return err
		}
		msg := sigverify.TransferMessage(target, outputs)
		if err := p.scheme.Verify(msg, args.Witness[i], rec.VerificationData); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		proof, err := p.authorityFor(rec)
		if err != nil {
			return err
		}
		if err := p.base.Deactivate(tx, target, proof); err != nil {
			return err
		}
	}

	if inputSum != outputSum {
		return fmt.Errorf("%w: inputs %d, outputs %d", utxo.ErrInvalidTransferData, inputSum, outputSum)
	}

	p.log.Debug().
		Int("inputs", nIn).
		Int("outputs", nOut).
		Uint64("value", inputSum).
		Msg("transfer")
	return nil
}

// spendable loads a UTXO governed by this module and checks its address.
func (p *Program) spendable(tx ledger.Tx, target address.Address) (*utxo.Record, error) {
	rec, err := p.base.Load(tx, target)
	if err != nil {
		return nil, err
	}
	if err := p.governed(rec, target); err != nil {
		return nil, err
	}
	if err := p.base.CheckAddress(rec, target); err != nil {
		return nil, err
	}
	return rec, nil
}

func addAmount(sum, amount uint64) (uint64, error) {
	out, carry := bits.Add64(sum, amount, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: amount overflow", utxo.ErrInvalidTransferData)
	}
	return out, nil
}
