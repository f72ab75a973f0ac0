package rlwe

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/nulltea/bfv/ring"
)

func sixPrimes(t *testing.T, N uint64) []uint64 {
	primes, err := ring.GenerateNTTFriendlyPrimes(N, 60, 6, nil)
	require.NoError(t, err)
	return primes
}

func centerBig(x, q *big.Int) *big.Int {
	half := new(big.Int).Rsh(q, 1)
	if x.Cmp(half) > 0 {
		return new(big.Int).Sub(x, q)
	}
	return new(big.Int).Set(x)
}

// TestBVSwitchCorrectness covers spec.md §8 scenario S3 / property 5:
// decrypting the switch output under sOut yields sIn*x plus noise bounded
// by 2^70.
func TestBVSwitchCorrectness(t *testing.T) {
	N := uint64(256)
	moduli := sixPrimes(t, N)
	ctx, err := ring.NewContext(N, moduli)
	require.NoError(t, err)

	keyRng, err := ring.NewKeyedPRNG(make([]byte, ring.SeedSize))
	require.NoError(t, err)

	sIn, err := NewSecretKey(ctx, keyRng)
	require.NoError(t, err)
	sOut, err := NewSecretKey(ctx, keyRng)
	require.NoError(t, err)

	sigma, bound := 3.2, uint64(19)

	ksk, err := NewBVKeySwitcher(ctx, sIn, sOut, sigma, bound, keyRng)
	require.NoError(t, err)

	x, err := ring.RandomGaussian(ctx, sigma, bound, keyRng)
	require.NoError(t, err)

	c0, c1, err := ksk.Switch(x)
	require.NoError(t, err)

	sOutEval := sOut.AsEvaluation(ctx)
	prod := ctx.NewPoly(ring.Evaluation)
	require.NoError(t, prod.Mul(c1, sOutEval))
	lhs := ctx.NewPoly(ring.Evaluation)
	require.NoError(t, lhs.Add(c0, prod))

	xEval := x.CopyNew()
	xEval.ChangeRepresentation(ring.Evaluation)
	sInEval := sIn.AsEvaluation(ctx)
	rhs := ctx.NewPoly(ring.Evaluation)
	require.NoError(t, rhs.Mul(sInEval, xEval))

	diff := ctx.NewPoly(ring.Evaluation)
	require.NoError(t, diff.Sub(lhs, rhs))
	diff.ChangeRepresentation(ring.Coefficient)

	diffBig := ctx.PolyToBigint(diff)
	bound70 := new(big.Int).Lsh(big.NewInt(1), 70)
	for _, c := range diffBig {
		centered := new(big.Int).Abs(centerBig(c, ctx.Q))
		require.True(t, centered.Cmp(bound70) <= 0, "noise exceeds 2^70 bound")
	}
}

// TestRegenerateC1StreamMatchesKeyGen covers spec.md §8 scenario S5:
// regenerating c1 from the stored seed reproduces the polynomials used at
// key-gen bit-exact.
func TestRegenerateC1StreamMatchesKeyGen(t *testing.T) {
	N := uint64(8)
	moduli := sixPrimes(t, N)
	ctx, err := ring.NewContext(N, moduli)
	require.NoError(t, err)

	keyRng, err := ring.NewKeyedPRNG(make([]byte, ring.SeedSize))
	require.NoError(t, err)

	sIn, err := NewSecretKey(ctx, keyRng)
	require.NoError(t, err)
	sOut, err := NewSecretKey(ctx, keyRng)
	require.NoError(t, err)

	ksk, err := NewBVKeySwitcher(ctx, sIn, sOut, 3.2, 19, keyRng)
	require.NoError(t, err)

	regenerated, err := RegenerateC1Stream(ctx, ksk.Seed(), len(moduli))
	require.NoError(t, err)

	for i := range ksk.c1 {
		require.True(t, cmp.Equal(ksk.c1[i].Coeffs, regenerated[i].Coeffs), "c1[%d] mismatch", i)
	}
}

// TestKeyEqualityAcrossSeeds covers spec.md §8 scenario S6: two keys built
// with the same seed and inputs are component-wise equal; keys built with
// different seeds differ.
func TestKeyEqualityAcrossSeeds(t *testing.T) {
	N := uint64(8)
	moduli := sixPrimes(t, N)
	ctx, err := ring.NewContext(N, moduli)
	require.NoError(t, err)

	keyRng, err := ring.NewKeyedPRNG(make([]byte, ring.SeedSize))
	require.NoError(t, err)
	sIn, err := NewSecretKey(ctx, keyRng)
	require.NoError(t, err)
	sOut, err := NewSecretKey(ctx, keyRng)
	require.NoError(t, err)

	var seedA, seedB [32]byte
	seedB[0] = 1 // any distinct seed

	errRngA, err := ring.NewKeyedPRNG(make([]byte, ring.SeedSize))
	require.NoError(t, err)
	kskA1, err := newBVKeySwitcherWithSeed(ctx, seedA, sIn, sOut, 3.2, 19, errRngA)
	require.NoError(t, err)

	errRngA2, err := ring.NewKeyedPRNG(make([]byte, ring.SeedSize))
	require.NoError(t, err)
	kskA2, err := newBVKeySwitcherWithSeed(ctx, seedA, sIn, sOut, 3.2, 19, errRngA2)
	require.NoError(t, err)

	// Same seed, same inputs, same (deterministic) error randomness: equal keys.
	for i := range kskA1.c0 {
		require.True(t, cmp.Equal(kskA1.c1[i].Coeffs, kskA2.c1[i].Coeffs), "c1[%d] mismatch across same-seed keys", i)
		require.True(t, cmp.Equal(kskA1.c0[i].Coeffs, kskA2.c0[i].Coeffs), "c0[%d] mismatch across same-seed keys", i)
	}

	errRngB, err := ring.NewKeyedPRNG(make([]byte, ring.SeedSize))
	require.NoError(t, err)
	kskB, err := newBVKeySwitcherWithSeed(ctx, seedB, sIn, sOut, 3.2, 19, errRngB)
	require.NoError(t, err)

	differ := false
	for i := range kskA1.c1 {
		if !cmp.Equal(kskA1.c1[i].Coeffs, kskB.c1[i].Coeffs) {
			differ = true
			break
		}
	}
	require.True(t, differ, "keys built with different seeds must differ")
}
