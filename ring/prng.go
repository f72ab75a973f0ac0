package ring

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20"
)

// SeedSize is the size, in bytes, of the seed that deterministically drives
// a KeyedPRNG (spec.md §5/§6).
const SeedSize = chacha20.KeySize

// KeyedPRNG is a ChaCha20-backed, keyed, resettable CSPRNG. It plays the
// role of the teacher's blake2b-backed utils.KeyedPRNG (ring/prng.go):
// every sampler in this package takes one explicitly rather than touching
// global randomness, and a key-switching key's c1 stream is regenerated
// bit-exactly by resetting a KeyedPRNG to the stored seed (spec.md §4.5).
type KeyedPRNG struct {
	seed   [SeedSize]byte
	cipher *chacha20.Cipher
}

// NewKeyedPRNG creates a KeyedPRNG seeded with key. If key is nil, a fresh
// random 32-byte seed is drawn from crypto/rand.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	p := new(KeyedPRNG)
	if key == nil {
		if _, err := rand.Read(p.seed[:]); err != nil {
			return nil, newRngFailureError(err)
		}
	} else if len(key) != SeedSize {
		return nil, newLengthMismatchError(len(key), SeedSize)
	} else {
		copy(p.seed[:], key)
	}
	return p, p.Reset()
}

// Seed returns the 32-byte seed that deterministically reproduces this
// stream from the start.
func (p *KeyedPRNG) Seed() [SeedSize]byte { return p.seed }

// Reset rewinds the stream back to its first output byte.
func (p *KeyedPRNG) Reset() error {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(p.seed[:], nonce[:])
	if err != nil {
		return newRngFailureError(err)
	}
	p.cipher = c
	return nil
}

// Read fills b with pseudo-random bytes. It implements io.Reader and never
// returns a short read or an error; randomness exhaustion from the
// underlying cipher cannot happen for a stream cipher.
func (p *KeyedPRNG) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = 0
	}
	p.cipher.XORKeyStream(b, b)
	return len(b), nil
}

var _ io.Reader = (*KeyedPRNG)(nil)
