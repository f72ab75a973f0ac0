package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// moduli60 returns count distinct 60-bit NTT-friendly primes for degree N.
func moduli60(t *testing.T, N uint64, count int) []uint64 {
	primes, err := GenerateNTTFriendlyPrimes(N, 60, count, nil)
	require.NoError(t, err)
	return primes
}

func TestNTTInvolution(t *testing.T) {
	N := uint64(8)
	moduli := moduli60(t, N, 6)

	ctx, err := NewContext(N, moduli)
	require.NoError(t, err)

	rng, err := NewKeyedPRNG(make([]byte, SeedSize))
	require.NoError(t, err)

	p, err := Random(ctx, rng)
	require.NoError(t, err)

	original := p.CopyNew()

	p.ChangeRepresentation(Coefficient)
	p.ChangeRepresentation(Evaluation)

	require.True(t, p.Equal(original), "forward(inverse(v)) must equal v")
}

func TestNTTFriendlyPrimeSearch(t *testing.T) {
	N := uint64(256)
	primes, err := GenerateNTTFriendlyPrimes(N, 60, 6, nil)
	require.NoError(t, err)
	require.Len(t, primes, 6)

	seen := map[uint64]bool{}
	for _, q := range primes {
		require.True(t, NTTFriendly(q, N))
		require.False(t, seen[q], "primes must be distinct")
		seen[q] = true
	}
}
