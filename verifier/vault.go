package verifier

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/ledger"
	"github.com/bitfsorg/libutxo-go/sigverify"
	"github.com/bitfsorg/libutxo-go/utxo"
)

// DepositAccounts are the cells a deposit references, in wire order.
type DepositAccounts struct {
	Base  address.Address
	Payer address.Address
	Admin address.Address
	UTXO  address.Address
}

// WithdrawAccounts are the cells a withdrawal references, in wire order.
type WithdrawAccounts struct {
	Base     address.Address
	Receiver address.Address
	Admin    address.Address
	UTXO     address.Address
}

// Deposit locks amount from the payer in the vault and activates the
// initialized UTXO whose content encodes that amount.
func (p *Program) Deposit(tx ledger.Tx, accts DepositAccounts, amount uint64, auth address.AuthorityProof) error {
	if err := p.checkBase(accts.Base); err != nil {
		return err
	}
	if err := p.checkAdmin(accts.Admin); err != nil {
		return err
	}
	if !auth.Has(accts.Payer) {
		return fmt.Errorf("%w: payer %s", utxo.ErrUnsigned, accts.Payer)
	}

	rec, err := p.base.Load(tx, accts.UTXO)
	if err != nil {
		return err
	}
	if err := p.governed(rec, accts.UTXO); err != nil {
		return err
	}
	if len(rec.VerificationData) != sigverify.PublicKeyLength {
		return fmt.Errorf("%w: verification data is %d bytes, want %d",
			utxo.ErrInvalidData, len(rec.VerificationData), sigverify.PublicKeyLength)
	}
	if !bytes.Equal(rec.ContentData, utxo.EncodeAmount(amount)) {
		return fmt.Errorf("%w: content does not encode amount %d", utxo.ErrInvalidData, amount)
	}
	if rec.IsActive {
		return fmt.Errorf("%w: %s", utxo.ErrAlreadyActivated, accts.UTXO)
	}

	vault, err := p.LoadAdmin(tx)
	if err != nil {
		return err
	}
	locked, carry := bits.Add64(vault.TotalLocked, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: total locked overflows", utxo.ErrInvalidData)
	}

	proof, err := p.authorityFor(rec)
	if err != nil {
		return err
	}
	if err := p.base.Activate(tx, accts.UTXO, proof); err != nil {
		return err
	}
	if err := tx.Transfer(accts.Payer, accts.Admin, amount); err != nil {
		return fmt.Errorf("verifier: lock %d: %w", amount, err)
	}
	vault.TotalLocked = locked
	if err := p.storeAdmin(tx, vault); err != nil {
		return err
	}

	p.log.Debug().
		Str("utxo", accts.UTXO.String()).
		Uint64("amount", amount).
		Uint64("total_locked", locked).
		Msg("deposit")
	return nil
}

// Withdraw spends an active UTXO whose witness signs keccak(utxo) and releases
// its amount from the vault to the receiver.
func (p *Program) Withdraw(tx ledger.Tx, accts WithdrawAccounts, witness []byte) error {
	if err := p.checkBase(accts.Base); err != nil {
		return err
	}
	if err := p.checkAdmin(accts.Admin); err != nil {
		return err
	}

	rec, err := p.spendable(tx, accts.UTXO)
	if err != nil {
		return err
	}
	if !rec.IsActive {
		return fmt.Errorf("%w: %s", utxo.ErrNotActive, accts.UTXO)
	}
	amount, err := rec.Amount()
	if err != nil {
		return err
	}

	if err := p.scheme.Verify(sigverify.WithdrawMessage(accts.UTXO), witness, rec.VerificationData); err != nil {
		return err
	}

	vault, err := p.LoadAdmin(tx)
	if err != nil {
		return err
	}
	if vault.TotalLocked < amount {
		return fmt.Errorf("%w: vault holds %d, withdraw %d", utxo.ErrInvalidData, vault.TotalLocked, amount)
	}

	proof, err := p.authorityFor(rec)
	if err != nil {
		return err
	}
	if err := p.base.Deactivate(tx, accts.UTXO, proof); err != nil {
		return err
	}
	vault.TotalLocked -= amount
	if err := p.storeAdmin(tx, vault); err != nil {
		return err
	}
	if err := tx.Transfer(accts.Admin, accts.Receiver, amount); err != nil {
		return fmt.Errorf("verifier: release %d: %w", amount, err)
	}

	p.log.Debug().
		Str("utxo", accts.UTXO.String()).
		Str("receiver", accts.Receiver.String()).
		Uint64("amount", amount).
		Msg("withdraw")
	return nil
}
