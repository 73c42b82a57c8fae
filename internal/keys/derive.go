package keys

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

const hardenedOffset uint32 = 0x80000000

var ErrInvalidPath = errors.New("invalid derivation path")

// DerivePrivateKey derives the 32 byte private key at path.
// WARNING: caller must zero the returned slice after use.
func DerivePrivateKey(seed []byte, path string) ([]byte, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return common.LeftPadBytes(key.Key, 32), nil
}

// ParsePath parses a BIP32 path such as m/44'/60'/0'/0/0. Hardened segments
// may be marked with ' or h.
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path != "m" && !strings.HasPrefix(path, "m/") {
		return nil, errors.Wrapf(ErrInvalidPath, "%q must start with m/", path)
	}

	segments := strings.Split(strings.TrimPrefix(strings.TrimPrefix(path, "m"), "/"), "/")
	indices := make([]uint32, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}

		hardened := strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h")
		if hardened {
			segment = segment[:len(segment)-1]
		}

		index, err := strconv.ParseUint(segment, 10, 31)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPath, "segment %q of %q", segment, path)
		}

		value := uint32(index)
		if hardened {
			value += hardenedOffset
		}
		indices = append(indices, value)
	}

	return indices, nil
}
