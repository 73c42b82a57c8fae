package keys

import (
	"crypto/sha512"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// BIP39: seed = PBKDF2(mnemonic, "mnemonic" + password, 2048, 64, SHA512)
const (
	pbkdf2Iterations = 2048
	pbkdf2KeyLength  = 64
)

// Seed holds a BIP39 seed in memory until Clear is called.
type Seed struct {
	mu    sync.RWMutex
	bytes []byte
}

// NewSeed derives the seed from a mnemonic phrase. Whitespace between words
// is normalized to single spaces.
func NewSeed(mnemonic string, password string) *Seed {
	normalized := strings.Join(strings.Fields(mnemonic), " ")

	return &Seed{
		bytes: pbkdf2.Key(
			[]byte(normalized),
			[]byte("mnemonic"+password),
			pbkdf2Iterations,
			pbkdf2KeyLength,
			sha512.New,
		),
	}
}

// Bytes returns a copy of the seed, or nil after Clear.
func (s *Seed) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bytes == nil {
		return nil
	}

	out := make([]byte, len(s.bytes))
	copy(out, s.bytes)

	return out
}

// Clear 清除内存中的种子
func (s *Seed) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	zero(s.bytes)
	s.bytes = nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
