package bfv

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nulltea/bfv/ring"
)

func testParams(t *testing.T, N uint64, count int) *Parameters {
	bits := make([]int, count)
	for i := range bits {
		bits[i] = 60
	}
	params, err := NewParametersFromLiteral(ParametersLiteral{N: N, T: 65537, ModuliBits: bits})
	require.NoError(t, err)
	return params
}

// TestEncodeDecodeSimdRoundTrip covers spec.md §8 scenario S1 / property 2.
func TestEncodeDecodeSimdRoundTrip(t *testing.T) {
	params := testParams(t, 8, 6)
	enc := NewEncoder(params)

	m := []uint64{1, 2, 3, 4, 5, 6, 7, 8}
	pt, err := enc.Encode(m, EncodingDescriptor{Kind: Simd, Level: 0, Cache: CacheNone})
	require.NoError(t, err)

	out, err := enc.Decode(pt, EncodingDescriptor{Kind: Simd, Level: 0})
	require.NoError(t, err)

	require.Equal(t, m, out)
}

// TestEncodeDecodePolyRoundTrip covers spec.md §8 property 2 for coefficient
// encoding.
func TestEncodeDecodePolyRoundTrip(t *testing.T) {
	params := testParams(t, 8, 6)
	enc := NewEncoder(params)

	m := []uint64{9, 8, 7, 6, 5, 4, 3, 2}
	pt, err := enc.Encode(m, EncodingDescriptor{Kind: Poly, Level: 0, Cache: CacheNone})
	require.NoError(t, err)

	out, err := enc.Decode(pt, EncodingDescriptor{Kind: Poly, Level: 0})
	require.NoError(t, err)

	require.Equal(t, m, out)
}

// TestScaleMCorrectness covers spec.md §8 scenario S2 / property 3: scale_m
// of m=[1,0,...,0] reconstructs to round(Q_0/t) in the 0-th coefficient and
// exactly 0 elsewhere.
func TestScaleMCorrectness(t *testing.T) {
	params := testParams(t, 8, 6)
	enc := NewEncoder(params)

	m := make([]uint64, 8)
	m[0] = 1

	pt, err := enc.Encode(m, EncodingDescriptor{
		Kind:  Poly,
		Level: 0,
		Cache: CacheAddSub,
		Repr:  ring.Coefficient,
	})
	require.NoError(t, err)
	require.NotNil(t, pt.AddSubPoly)

	ctx := params.ContextAt(0)
	coeffs := ctx.PolyToBigint(pt.AddSubPoly)

	// round(Q_0/t) = floor((2*Q_0 + t) / (2*t)).
	tBig := new(big.Int).SetUint64(params.T)
	expectedDelta := new(big.Int).Lsh(ctx.Q, 1)
	expectedDelta.Add(expectedDelta, tBig)
	expectedDelta.Quo(expectedDelta, new(big.Int).Lsh(tBig, 1))
	require.Equal(t, 0, coeffs[0].Cmp(expectedDelta))

	for j := 1; j < len(coeffs); j++ {
		require.Equal(t, 0, coeffs[j].Sign(), "coefficient %d must be exactly zero", j)
	}
}
