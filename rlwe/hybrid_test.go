package rlwe

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nulltea/bfv/ring"
)

// TestHybridSwitchCorrectness covers spec.md §8 scenario S4 / property 6:
// same shape as the BV test, with a bound that is tighter than BV's 2^70
// for these parameters (dnum=3, aux_bits=60) since the noise now scales
// with max_j bits(Q_j) rather than bits(Q).
func TestHybridSwitchCorrectness(t *testing.T) {
	N := uint64(8)
	moduli := sixPrimes(t, N)
	ctxQ, err := ring.NewContext(N, moduli)
	require.NoError(t, err)

	keyRng, err := ring.NewKeyedPRNG(make([]byte, ring.SeedSize))
	require.NoError(t, err)

	sIn, err := NewSecretKey(ctxQ, keyRng)
	require.NoError(t, err)
	sOut, err := NewSecretKey(ctxQ, keyRng)
	require.NoError(t, err)

	sigma, bound := 3.2, uint64(19)

	ksk, err := NewHybridKeySwitcher(ctxQ, 3, 60, sIn, sOut, sigma, bound, keyRng)
	require.NoError(t, err)

	x, err := ring.RandomGaussian(ctxQ, sigma, bound, keyRng)
	require.NoError(t, err)

	c0, c1, err := ksk.Switch(x)
	require.NoError(t, err)

	sOutEval := sOut.AsEvaluation(ctxQ)
	prod := ctxQ.NewPoly(ring.Evaluation)
	require.NoError(t, prod.Mul(c1, sOutEval))
	lhs := ctxQ.NewPoly(ring.Evaluation)
	require.NoError(t, lhs.Add(c0, prod))

	xEval := x.CopyNew()
	xEval.ChangeRepresentation(ring.Evaluation)
	sInEval := sIn.AsEvaluation(ctxQ)
	rhs := ctxQ.NewPoly(ring.Evaluation)
	require.NoError(t, rhs.Mul(sInEval, xEval))

	diff := ctxQ.NewPoly(ring.Evaluation)
	require.NoError(t, diff.Sub(lhs, rhs))
	diff.ChangeRepresentation(ring.Coefficient)

	diffBig := ctxQ.PolyToBigint(diff)
	bound65 := new(big.Int).Lsh(big.NewInt(1), 65)
	for _, c := range diffBig {
		centered := new(big.Int).Abs(centerBig(c, ctxQ.Q))
		require.True(t, centered.Cmp(bound65) <= 0, "hybrid noise exceeds bound")
	}
}

// TestHybridRejectsMismatchedContext covers the ksk_ctx == ciphertext_ctx
// restriction of spec.md Open Question 2.
func TestHybridRejectsMismatchedContext(t *testing.T) {
	N := uint64(8)
	moduli := sixPrimes(t, N)
	ctxQ, err := ring.NewContext(N, moduli)
	require.NoError(t, err)

	keyRng, err := ring.NewKeyedPRNG(make([]byte, ring.SeedSize))
	require.NoError(t, err)
	sIn, err := NewSecretKey(ctxQ, keyRng)
	require.NoError(t, err)
	sOut, err := NewSecretKey(ctxQ, keyRng)
	require.NoError(t, err)

	ksk, err := NewHybridKeySwitcher(ctxQ, 3, 60, sIn, sOut, 3.2, 19, keyRng)
	require.NoError(t, err)

	otherModuli, err := ring.GenerateNTTFriendlyPrimes(N, 60, 6, moduli)
	require.NoError(t, err)
	otherCtx, err := ring.NewContext(N, otherModuli)
	require.NoError(t, err)

	other, err := ring.RandomGaussian(otherCtx, 3.2, 19, keyRng)
	require.NoError(t, err)

	_, _, err = ksk.Switch(other)
	require.Error(t, err)
}
