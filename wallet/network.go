package wallet

import (
	"fmt"

	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

// NetworkConfig selects the extended-key version bytes and the BIP44 coin
// type owner keys are derived under.
type NetworkConfig struct {
	Name     string `json:"name"`
	CoinType uint32 `json:"coin_type"`
}

// Predefined network configurations.
var (
	MainNet = NetworkConfig{Name: "mainnet", CoinType: 236}
	TestNet = NetworkConfig{Name: "testnet", CoinType: 1}
	RegTest = NetworkConfig{Name: "regtest", CoinType: 1}
)

var predefined = map[string]*NetworkConfig{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
func GetNetwork(name string) (*NetworkConfig, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

func (n *NetworkConfig) params() *chaincfg.Params {
	if n.Name == "mainnet" {
		return &chaincfg.MainNet
	}
	return &chaincfg.TestNet
}
