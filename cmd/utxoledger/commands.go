package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/config"
	"github.com/bitfsorg/libutxo-go/instruction"
	"github.com/bitfsorg/libutxo-go/ledger"
	"github.com/bitfsorg/libutxo-go/utxo"
	"github.com/bitfsorg/libutxo-go/wallet"
)

var (
	errAlreadyInitialized = errors.New("data directory already initialized")
	errNoteSpent          = errors.New("note already spent")
	errUnbalanced         = errors.New("inputs and outputs differ in total amount")
	errBadOutput          = errors.New("output must be label:amount")
	errTooManyNotes       = errors.New("at most 255 inputs and 255 outputs")
)

func initAction(c *cli.Context) error {
	password := c.String("password")
	if password == "" {
		return errNoPassword
	}
	dataDir := c.String("datadir")
	cfgPath := config.ConfigPath(dataDir)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%w: %s", errAlreadyInitialized, cfgPath)
	}

	lock, err := wallet.LockDataDir(dataDir, false)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.Network = c.String("network")
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	mnemonic := c.String("mnemonic")
	generated := mnemonic == ""
	if generated {
		bits := wallet.Mnemonic12Words
		switch c.Int("words") {
		case 12:
		case 24:
			bits = wallet.Mnemonic24Words
		default:
			return wallet.ErrInvalidEntropy
		}
		if mnemonic, err = wallet.GenerateMnemonic(bits); err != nil {
			return err
		}
	}
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return err
	}
	if err := wallet.SaveSeed(dataDir, seed, password); err != nil {
		return err
	}
	if err := config.SaveConfig(cfgPath, cfg); err != nil {
		return err
	}

	w, err := openWallet(cfg, password)
	if err != nil {
		return err
	}
	fee, err := w.DeriveFeeKey(0)
	if err != nil {
		return err
	}
	feeAddr, err := fee.Address()
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Initialized %s (%s)\n", dataDir, cfg.Network)
	if generated {
		fmt.Fprintf(out, "Mnemonic: %s\n", mnemonic)
		fmt.Fprintln(out, "Write these words down; they are the only backup of the wallet.")
	}
	fmt.Fprintf(out, "Fee account: %s\n", feeAddr)
	return nil
}

func keysAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	balance, err := e.balance(e.feeAddr)
	if err != nil {
		return err
	}
	next, err := e.wallet.DeriveOwnerKey(0, e.state.NextIndex)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Fee account:   %s  %s  balance %d\n", e.feeAddr, e.fee.Path, balance)
	fmt.Fprintf(e.out, "Next owner:    %s  %x\n", next.Path, next.PublicKey.Compressed())
	fmt.Fprintf(e.out, "Base module:   %s\n", e.proc.Store().Module())
	fmt.Fprintf(e.out, "Verification:  %s\n", e.proc.Verifier().ID())
	fmt.Fprintf(e.out, "Vault:         %s\n", e.proc.Verifier().AdminAddress())
	return nil
}

func airdropAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	amount := c.Uint64("amount")
	if err := e.ledger.Update(func(tx ledger.Tx) error {
		return tx.Credit(e.feeAddr, amount)
	}); err != nil {
		return err
	}
	balance, err := e.balance(e.feeAddr)
	if err != nil {
		return err
	}
	e.log.Info().Uint64("amount", amount).Str("account", e.feeAddr.String()).Msg("airdrop")
	fmt.Fprintf(e.out, "Fee account balance: %d\n", balance)
	return nil
}

func createAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	note, err := e.newNote(c.String("label"), c.Uint64("amount"))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Created %s at %s (amount %d)\n", note.Label, note.Address, note.Amount)

	if c.Bool("deposit") {
		if err := e.deposit(note); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Deposited %d into %s\n", note.Amount, note.Label)
	}
	return nil
}

func depositAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	note, err := e.unspent(c.String("label"))
	if err != nil {
		return err
	}
	if err := e.deposit(note); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Deposited %d into %s\n", note.Amount, note.Label)
	return nil
}

func withdrawAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	note, err := e.unspent(c.String("label"))
	if err != nil {
		return err
	}
	receiver := e.feeAddr
	if to := c.String("to"); to != "" {
		if receiver, err = address.ParseAddress(to); err != nil {
			return err
		}
	}

	kp, target, err := e.owner(note)
	if err != nil {
		return err
	}
	witness, err := kp.SignWithdraw(target)
	if err != nil {
		return err
	}
	v := e.proc.Verifier()
	if err := e.run(v.ID(),
		[]address.Address{e.proc.Store().Module(), receiver, v.AdminAddress(), target},
		&instruction.WithdrawSol{Witness: witness}); err != nil {
		return err
	}

	note.Spent = true
	if err := e.saveState(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Withdrew %d from %s to %s\n", note.Amount, note.Label, receiver)
	return nil
}

type output struct {
	label  string
	amount uint64
}

func parseOutput(s string) (output, error) {
	label, amount, ok := strings.Cut(s, ":")
	if !ok || label == "" {
		return output{}, fmt.Errorf("%w: %q", errBadOutput, s)
	}
	n, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return output{}, fmt.Errorf("%w: %q: %w", errBadOutput, s, err)
	}
	return output{label: label, amount: n}, nil
}

func transferAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	froms, tos := c.StringSlice("from"), c.StringSlice("to")
	if len(froms) > math.MaxUint8 || len(tos) > math.MaxUint8 {
		return errTooManyNotes
	}

	var inSum, outSum uint64
	inputs := make([]*wallet.Note, 0, len(froms))
	for _, label := range froms {
		note, err := e.unspent(label)
		if err != nil {
			return err
		}
		inputs = append(inputs, note)
		inSum += note.Amount
	}
	outs := make([]output, 0, len(tos))
	for _, s := range tos {
		o, err := parseOutput(s)
		if err != nil {
			return err
		}
		outs = append(outs, o)
		outSum += o.amount
	}
	if inSum != outSum {
		return fmt.Errorf("%w: %d in, %d out", errUnbalanced, inSum, outSum)
	}

	outputs := make([]address.Address, 0, len(outs))
	for _, o := range outs {
		note, err := e.newNote(o.label, o.amount)
		if err != nil {
			return err
		}
		target, err := note.Target()
		if err != nil {
			return err
		}
		outputs = append(outputs, target)
	}

	accounts := append([]address.Address{e.proc.Store().Module()}, outputs...)
	witness := make([][]byte, 0, len(inputs))
	for _, note := range inputs {
		kp, target, err := e.owner(note)
		if err != nil {
			return err
		}
		w, err := kp.SignTransfer(target, outputs)
		if err != nil {
			return err
		}
		witness = append(witness, w)
		accounts = append(accounts, target)
	}

	if err := e.run(e.proc.Verifier().ID(), accounts, &instruction.Transfer{
		Witness:     witness,
		InputCount:  uint8(len(inputs)),
		OutputCount: uint8(len(outputs)),
	}); err != nil {
		return err
	}

	for _, note := range inputs {
		note.Spent = true
	}
	if err := e.saveState(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Transferred %d from %d input(s) to %d output(s)\n", inSum, len(inputs), len(outputs))
	return nil
}

func showAction(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	return e.ledger.View(func(tx ledger.Tx) error {
		fmt.Fprintf(e.out, "%-12s %-46s %12s  %s\n", "LABEL", "ADDRESS", "AMOUNT", "STATE")
		for _, note := range e.state.Notes {
			rec, err := e.cell(tx, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%-12s %-46s %12d  %s\n", note.Label, note.Address, note.Amount, noteState(note, rec))
		}

		admin, err := e.proc.Verifier().LoadAdmin(tx)
		switch {
		case err == nil:
			fmt.Fprintf(e.out, "Vault locked: %d\n", admin.TotalLocked)
		case errors.Is(err, utxo.ErrNotInitialized):
			fmt.Fprintln(e.out, "Vault locked: 0 (not initialized)")
		default:
			return err
		}

		fee, err := tx.Account(e.feeAddr)
		switch {
		case err == nil:
			fmt.Fprintf(e.out, "Fee balance:  %d\n", fee.Lamports)
		case errors.Is(err, ledger.ErrAccountNotFound):
			fmt.Fprintln(e.out, "Fee balance:  0")
		default:
			return err
		}
		return nil
	})
}

func noteState(note *wallet.Note, rec *utxo.Record) string {
	switch {
	case rec == nil:
		return "missing"
	case note.Spent:
		return "spent"
	case rec.IsActive:
		return "active"
	default:
		return "inactive"
	}
}

func (e *env) unspent(label string) (*wallet.Note, error) {
	note, err := e.state.GetNote(label)
	if err != nil {
		return nil, err
	}
	if note.Spent {
		return nil, fmt.Errorf("%w: %q", errNoteSpent, label)
	}
	return note, nil
}

func (e *env) balance(key address.Address) (uint64, error) {
	var lamports uint64
	err := e.ledger.View(func(tx ledger.Tx) error {
		acct, err := tx.Account(key)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		lamports = acct.Lamports
		return nil
	})
	return lamports, err
}
