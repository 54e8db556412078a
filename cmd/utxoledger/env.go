package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/config"
	"github.com/bitfsorg/libutxo-go/instruction"
	"github.com/bitfsorg/libutxo-go/ledger"
	"github.com/bitfsorg/libutxo-go/logging"
	"github.com/bitfsorg/libutxo-go/processor"
	"github.com/bitfsorg/libutxo-go/utxo"
	"github.com/bitfsorg/libutxo-go/wallet"
)

var errNoPassword = errors.New("wallet password required (--password or " + passwordEnv + ")")

// env is everything a command needs, opened from the data directory.
type env struct {
	cfg     config.Config
	log     zerolog.Logger
	out     io.Writer
	ledger  *ledger.BoltLedger
	proc    *processor.Processor
	wallet  *wallet.Wallet
	state   *wallet.WalletState
	fee     *wallet.KeyPair
	feeAddr address.Address

	lock      *wallet.DirLock
	logCloser io.Closer
}

func loadConfig(c *cli.Context) (config.Config, error) {
	dataDir := c.String("datadir")
	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return cfg, fmt.Errorf("%w (run utxoledger init)", err)
		}
		return cfg, err
	}
	cfg.DataDir = dataDir
	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func openWallet(cfg config.Config, password string) (*wallet.Wallet, error) {
	if password == "" {
		return nil, errNoPassword
	}
	seed, err := wallet.LoadSeed(cfg.DataDir, password)
	if err != nil {
		return nil, err
	}
	network, err := wallet.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}
	return wallet.NewWallet(seed, network)
}

func openEnv(c *cli.Context) (_ *env, err error) {
	e := &env{out: c.App.Writer}
	defer func() {
		if err != nil {
			e.Close()
		}
	}()

	if e.cfg, err = loadConfig(c); err != nil {
		return nil, err
	}
	if e.lock, err = wallet.LockDataDir(e.cfg.DataDir, true); err != nil {
		return nil, err
	}
	if e.log, e.logCloser, err = logging.New(e.cfg, "utxoledger"); err != nil {
		return nil, err
	}
	if e.wallet, err = openWallet(e.cfg, c.String("password")); err != nil {
		return nil, err
	}
	if e.fee, err = e.wallet.DeriveFeeKey(0); err != nil {
		return nil, err
	}
	if e.feeAddr, err = e.fee.Address(); err != nil {
		return nil, err
	}
	if e.state, err = wallet.LoadState(e.cfg.DataDir); err != nil {
		return nil, err
	}

	base, verification := e.cfg.Modules()
	if e.proc, err = processor.New(base, verification, nil, nil, e.log); err != nil {
		return nil, err
	}
	if e.ledger, err = ledger.OpenBoltLedger(e.cfg.LedgerPath(), e.cfg.Rent()); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *env) Close() error {
	var errs []error
	if e.ledger != nil {
		errs = append(errs, e.ledger.Close())
	}
	if e.logCloser != nil {
		errs = append(errs, e.logCloser.Close())
	}
	errs = append(errs, e.lock.Unlock())
	return errors.Join(errs...)
}

func (e *env) saveState() error {
	return wallet.SaveState(e.cfg.DataDir, e.state)
}

// run submits ins to program with the fee account as the only signer.
func (e *env) run(program address.Address, accounts []address.Address, ins instruction.Instruction) error {
	return e.proc.Process(e.ledger, processor.Invocation{
		Program:  program,
		Accounts: accounts,
		Signers:  []address.Address{e.feeAddr},
		Data:     instruction.Encode(ins),
	})
}

// ensureAdmin creates the vault record on first use.
func (e *env) ensureAdmin() error {
	err := e.ledger.View(func(tx ledger.Tx) error {
		_, err := e.proc.Verifier().LoadAdmin(tx)
		return err
	})
	if !errors.Is(err, utxo.ErrNotInitialized) {
		return err
	}
	e.log.Info().Str("admin", e.proc.Verifier().AdminAddress().String()).Msg("initializing vault")
	return e.run(e.proc.Verifier().ID(),
		[]address.Address{e.proc.Verifier().AdminAddress(), e.feeAddr},
		&instruction.InitializeAdmin{})
}

// newNote derives a fresh owner key and initializes an inactive UTXO of
// amount for it.
func (e *env) newNote(label string, amount uint64) (*wallet.Note, error) {
	if _, err := e.state.GetNote(label); err == nil {
		return nil, fmt.Errorf("%w: %q", wallet.ErrNoteExists, label)
	}
	index, err := e.state.AllocateIndex()
	if err != nil {
		return nil, err
	}
	kp, err := e.wallet.DeriveOwnerKey(0, index)
	if err != nil {
		return nil, err
	}
	pub, err := kp.VerificationData()
	if err != nil {
		return nil, err
	}

	seed := wallet.SlotSeed(pub, index)
	verification := e.proc.Verifier().ID()
	target, err := e.proc.Store().ExpectedAddress(seed, verification)
	if err != nil {
		return nil, err
	}
	if err := e.run(e.proc.Store().Module(), []address.Address{target, e.feeAddr}, &instruction.InitializeUTXO{
		VerificationModule: verification,
		VerificationData:   pub,
		ContentData:        utxo.EncodeAmount(amount),
		AccountSeed:        seed,
	}); err != nil {
		return nil, err
	}

	note := &wallet.Note{
		Label:   label,
		Address: target.String(),
		Seed:    fmt.Sprintf("%x", seed[:]),
		Index:   index,
		Amount:  amount,
	}
	if err := e.state.AddNote(note); err != nil {
		return nil, err
	}
	return note, e.saveState()
}

func (e *env) deposit(note *wallet.Note) error {
	if err := e.ensureAdmin(); err != nil {
		return err
	}
	target, err := note.Target()
	if err != nil {
		return err
	}
	v := e.proc.Verifier()
	return e.run(v.ID(),
		[]address.Address{e.proc.Store().Module(), e.feeAddr, v.AdminAddress(), target},
		&instruction.DepositSol{Amount: note.Amount})
}

// owner returns the key that controls note.
func (e *env) owner(note *wallet.Note) (*wallet.KeyPair, address.Address, error) {
	target, err := note.Target()
	if err != nil {
		return nil, address.Zero, err
	}
	kp, err := e.wallet.DeriveOwnerKey(note.Account, note.Index)
	if err != nil {
		return nil, address.Zero, err
	}
	return kp, target, nil
}

// cell reads the ledger state of note, reporting a missing record as nil.
func (e *env) cell(tx ledger.Tx, note *wallet.Note) (*utxo.Record, error) {
	target, err := note.Target()
	if err != nil {
		return nil, err
	}
	rec, err := e.proc.Store().Load(tx, target)
	if errors.Is(err, utxo.ErrNotInitialized) {
		return nil, nil
	}
	return rec, err
}
