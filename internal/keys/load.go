package keys

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/orderbook-scripts/internal/config"
)

var ErrNoKeyMaterial = errors.New("no private key or mnemonic configured")

// Load returns the signing key described by the wallet configuration. A
// private key takes precedence over a mnemonic.
func Load(cfg config.Wallet) (*ecdsa.PrivateKey, error) {
	switch {
	case cfg.PrivateKey != "":
		return FromHex(cfg.PrivateKey)
	case cfg.Mnemonic != "":
		path := cfg.DerivationPath
		if path == "" {
			path = config.DefaultDerivationPath
		}
		return FromMnemonic(cfg.Mnemonic, cfg.MnemonicPassword, path)
	default:
		return nil, ErrNoKeyMaterial
	}
}

// FromHex parses a hex private key with or without 0x prefix.
func FromHex(raw string) (*ecdsa.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		raw = "0x" + raw
	}

	b, err := hexutil.Decode(raw)
	if err != nil {
		return nil, errors.Wrap(err, "private key is not valid hex")
	}
	defer zero(b)

	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert to ECDSA private key")
	}

	return key, nil
}

// FromMnemonic derives the key at path from a BIP39 mnemonic.
func FromMnemonic(mnemonic, password, path string) (*ecdsa.PrivateKey, error) {
	seed := NewSeed(mnemonic, password)
	defer seed.Clear()

	b := seed.Bytes()
	defer zero(b)

	privateKey, err := DerivePrivateKey(b, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive private key")
	}
	defer zero(privateKey)

	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert to ECDSA private key")
	}

	return key, nil
}
