// Command utxoledger operates a UTXO ledger stored in a local bbolt file.
//
// Usage:
//
//	utxoledger init                       create the data directory, config and wallet seed
//	utxoledger airdrop --amount N         mint native value into the fee account
//	utxoledger create --label L --amount N [--deposit]
//	utxoledger deposit --label L
//	utxoledger withdraw --label L [--to ADDRESS]
//	utxoledger transfer --from L1 [--from L2] --to L3:N [--to L4:M]
//	utxoledger keys | show
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/libutxo-go/config"
)

const passwordEnv = "UTXOLEDGER_PASSWORD"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "utxoledger",
		Usage:     "Operate a UTXO ledger with ECDSA-verified transfers",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "datadir",
				Usage: "data directory holding config, wallet and ledger",
				Value: config.DefaultDataDir(),
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "wallet seed password",
				EnvVars: []string{passwordEnv},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create the data directory, config file and encrypted wallet seed",
				Action: initAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "network", Usage: "mainnet, testnet or regtest", Value: "mainnet"},
					&cli.StringFlag{Name: "mnemonic", Usage: "restore from an existing BIP39 mnemonic"},
					&cli.IntFlag{Name: "words", Usage: "mnemonic length, 12 or 24", Value: 12},
				},
			},
			{
				Name:   "keys",
				Usage:  "Print the fee account and the next owner key",
				Action: keysAction,
			},
			{
				Name:   "airdrop",
				Usage:  "Mint native value into the fee account",
				Action: airdropAction,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "amount", Usage: "lamports to mint", Required: true},
				},
			},
			{
				Name:   "create",
				Usage:  "Initialize a UTXO owned by a fresh wallet key",
				Action: createAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "label", Usage: "wallet label for the UTXO", Required: true},
					&cli.Uint64Flag{Name: "amount", Usage: "amount recorded in the UTXO", Required: true},
					&cli.BoolFlag{Name: "deposit", Usage: "lock the amount and activate the UTXO"},
				},
			},
			{
				Name:   "deposit",
				Usage:  "Lock native value and activate a created UTXO",
				Action: depositAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "label", Usage: "UTXO to activate", Required: true},
				},
			},
			{
				Name:   "withdraw",
				Usage:  "Spend a UTXO back to native value",
				Action: withdrawAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "label", Usage: "UTXO to spend", Required: true},
					&cli.StringFlag{Name: "to", Usage: "receiving address, defaults to the fee account"},
				},
			},
			{
				Name:   "transfer",
				Usage:  "Spend UTXOs into new UTXOs of equal total value",
				Action: transferAction,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "from", Usage: "input UTXO label", Required: true},
					&cli.StringSliceFlag{Name: "to", Usage: "output as label:amount", Required: true},
				},
			},
			{
				Name:   "show",
				Usage:  "List wallet UTXOs with their ledger state",
				Action: showAction,
			},
		},
	}
}
