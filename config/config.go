// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the utxoledger configuration file, a plain
// "key = value" file with "#" comments stored in the data directory.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bitfsorg/libutxo-go/address"
	"github.com/bitfsorg/libutxo-go/ledger"
)

const (
	// configFileName is the name of the config file inside the data directory.
	configFileName = "config"

	// DefaultBaseModule names the base module when none is configured.
	DefaultBaseModule = "utxo-base"

	// DefaultVerificationModule names the verification module when none is configured.
	DefaultVerificationModule = "ecdsa-verification"
)

// Config is the runtime configuration of a ledger deployment.
type Config struct {
	DataDir  string
	Network  string // "mainnet", "testnet" or "regtest"
	LogLevel string // "debug", "info", "warn" or "error"
	LogFile  string // empty logs to stderr

	// Module identities: a base58 address or a name hashed by address.ModuleID.
	BaseModule         string
	VerificationModule string

	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

// DefaultDataDir returns ~/.utxoledger, or .utxoledger when the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".utxoledger"
	}
	return filepath.Join(home, ".utxoledger")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataDir:             DefaultDataDir(),
		Network:             "mainnet",
		LogLevel:            "info",
		BaseModule:          DefaultBaseModule,
		VerificationModule:  DefaultVerificationModule,
		LamportsPerByteYear: ledger.DefaultLamportsPerByteYear,
		ExemptionThreshold:  ledger.DefaultExemptionThreshold,
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), configFileName)
}

// LedgerPath returns the bbolt ledger file inside the data directory.
func (c Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// Rent returns the configured rent schedule.
func (c Config) Rent() ledger.Rent {
	return ledger.Rent{
		LamportsPerByteYear: c.LamportsPerByteYear,
		ExemptionThreshold:  c.ExemptionThreshold,
	}
}

// Modules resolves the configured base and verification module identities.
func (c Config) Modules() (base, verification address.Address) {
	return ResolveModule(c.BaseModule), ResolveModule(c.VerificationModule)
}

// ResolveModule parses s as a base58 address, falling back to the module id
// of the name s.
func ResolveModule(s string) address.Address {
	if addr, err := address.ParseAddress(s); err == nil {
		return addr
	}
	return address.ModuleID(s)
}

// LoadConfig reads the file at path on top of DefaultConfig. Unknown keys
// are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "basemodule":
		c.BaseModule = value
	case "verificationmodule":
		c.VerificationModule = value
	case "rentrate":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		c.LamportsPerByteYear = n
	case "rentthreshold":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		c.ExemptionThreshold = n
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# UTXO Ledger Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	b.WriteString("\n# Module identities (base58 address or name)\n")
	fmt.Fprintf(&b, "basemodule = %s\n", cfg.BaseModule)
	fmt.Fprintf(&b, "verificationmodule = %s\n", cfg.VerificationModule)
	b.WriteString("\n# Rent exemption: (128 + size) * rentrate * rentthreshold\n")
	fmt.Fprintf(&b, "rentrate = %d\n", cfg.LamportsPerByteYear)
	fmt.Fprintf(&b, "rentthreshold = %d\n", cfg.ExemptionThreshold)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
