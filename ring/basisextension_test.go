package ring

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestApproxSwitchCRTBasisError checks spec.md §8 property 4: after
// switching x from Q into P and lifting back to a big integer, the result
// equals x mod P up to an additive error bounded by (L/2)*Q.
func TestApproxSwitchCRTBasisError(t *testing.T) {
	// P is chosen comfortably larger than Q so that the CRT reconstruction
	// in the P basis cannot itself wrap around P; this isolates the additive
	// error introduced by omitting the "v" correction term (the quantity
	// this property is about) from a second, unrelated wraparound mod P.
	N := uint64(8)
	qModuli := moduli60(t, N, 2)
	ctxQ, err := NewContext(N, qModuli)
	require.NoError(t, err)

	pModuli, err := GenerateNTTFriendlyPrimes(N, 60, 5, qModuli)
	require.NoError(t, err)
	ctxP, err := NewContext(N, pModuli)
	require.NoError(t, err)

	be := NewBasisExtender(ctxQ, ctxP)

	rng, err := NewKeyedPRNG(make([]byte, SeedSize))
	require.NoError(t, err)

	x, err := RandomGaussian(ctxQ, 3.2, 19, rng)
	require.NoError(t, err)

	xBig := ctxQ.PolyToBigint(x)

	extended, err := be.ApproxSwitchCRTBasis(x)
	require.NoError(t, err)

	extBig := ctxP.PolyToBigint(extended)

	L := big.NewInt(int64(len(qModuli)))
	bound := new(big.Int).Mul(L, ctxQ.Q)
	bound.Div(bound, big.NewInt(2))

	for j := uint64(0); j < N; j++ {
		expected := new(big.Int).Mod(xBig[j], ctxP.Q)
		diff := new(big.Int).Sub(extBig[j], expected)
		diff.Abs(diff)
		require.True(t, diff.Cmp(bound) <= 0, "basis-switch error exceeds (L/2)*Q bound")
	}
}
