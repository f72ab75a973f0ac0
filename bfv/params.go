// Package bfv implements the BFV plaintext scaling and encoding pipeline:
// parameter generation, the per-level ciphertext context chain, and the
// SIMD/coefficient plaintext encoder (spec.md §3, §4.3, §4.4).
package bfv

import (
	"math/big"
	"math/bits"

	"github.com/nulltea/bfv/ring"
)

// ParametersLiteral is the user-facing description of a BFV instance: the
// ring degree, the plaintext modulus, and the bit sizes of the ciphertext
// modulus chain, one entry per q_i (spec.md §4.3). Mirrors the teacher's
// bfv.ParametersLiteral / bgv.ParametersLiteral.
type ParametersLiteral struct {
	N          uint64
	T          uint64
	ModuliBits []int
}

// Parameters is the immutable bundle built from a ParametersLiteral: the
// per-level ciphertext contexts, the plaintext context (for SIMD's inverse
// NTT), the slot permutation, and the per-level Δ / [Q_ℓ mod t] / [-t⁻¹]_{Q_ℓ}
// constants (spec.md §3 "BFV parameters").
type Parameters struct {
	N uint64
	T uint64

	ctxT   *ring.Context
	levels []*ring.Context // levels[l] holds L-l moduli; level 0 is the full chain

	qModT   []uint64   // qModT[l] = Q_l mod t
	negTInv [][]uint64 // negTInv[l][i] = (-t^-1) mod q_i, for q_i in levels[l]
	delta   [][]uint64 // delta[l][i] = floor(Q_l/t) mod q_i

	perm []uint64 // slot permutation π, length N
}

// NewParametersFromLiteral generates the ciphertext modulus chain (distinct
// NTT-friendly primes of the requested bit sizes, none equal to t), builds
// the per-level context chain, and precomputes the scaling constants and
// slot permutation (spec.md §4.3).
func NewParametersFromLiteral(lit ParametersLiteral) (*Parameters, error) {
	N := lit.N
	if !ring.NTTFriendly(lit.T, N) {
		return nil, newPlaintextModulusError(lit.T, N)
	}

	exclude := []uint64{lit.T}
	moduli := make([]uint64, 0, len(lit.ModuliBits))
	for _, bitSize := range lit.ModuliBits {
		primes, err := ring.GenerateNTTFriendlyPrimes(N, bitSize, 1, exclude)
		if err != nil {
			return nil, err
		}
		moduli = append(moduli, primes[0])
		exclude = append(exclude, primes[0])
	}

	L := len(moduli)
	levels := make([]*ring.Context, L)
	for l := 0; l < L; l++ {
		ctx, err := ring.NewContext(N, moduli[:L-l])
		if err != nil {
			return nil, err
		}
		levels[l] = ctx
	}

	ctxT, err := ring.NewContext(N, []uint64{lit.T})
	if err != nil {
		return nil, err
	}

	params := &Parameters{
		N:      N,
		T:      lit.T,
		ctxT:   ctxT,
		levels: levels,
		perm:   buildSlotPermutation(N),
	}

	tBig := new(big.Int).SetUint64(lit.T)
	params.qModT = make([]uint64, L)
	params.negTInv = make([][]uint64, L)
	params.delta = make([][]uint64, L)

	for l, ctx := range levels {
		params.qModT[l] = new(big.Int).Mod(ctx.Q, tBig).Uint64()

		deltaBig := new(big.Int).Quo(ctx.Q, tBig)

		negTInv := make([]uint64, len(ctx.Moduli))
		delta := make([]uint64, len(ctx.Moduli))
		for i, mod := range ctx.Moduli {
			qi := new(big.Int).SetUint64(mod.Q)
			tInv := new(big.Int).ModInverse(new(big.Int).Mod(tBig, qi), qi)
			negTInv[i] = mod.Q - tInv.Uint64()
			if negTInv[i] == mod.Q {
				negTInv[i] = 0
			}
			delta[i] = new(big.Int).Mod(deltaBig, qi).Uint64()
		}
		params.negTInv[l] = negTInv
		params.delta[l] = delta
	}

	return params, nil
}

// Level returns the L-1, the index of the deepest level.
func (p *Parameters) Level() int { return len(p.levels) - 1 }

// ContextAt returns the ciphertext ring context at level l.
func (p *Parameters) ContextAt(l int) *ring.Context { return p.levels[l] }

// QModT returns Q_l mod t.
func (p *Parameters) QModT(l int) uint64 { return p.qModT[l] }

// Delta returns the per-residue floor(Q_l/t) constants at level l.
func (p *Parameters) Delta(l int) []uint64 { return p.delta[l] }

// NegTInv returns the per-residue (-t^-1) mod q_i constants at level l.
func (p *Parameters) NegTInv(l int) []uint64 { return p.negTInv[l] }

// buildSlotPermutation computes the SIMD "matrix representation" index map:
// powers of the odd generator 5 modulo 2N, halved then bit-reversed (spec.md
// §4.3). This is the standard BFV slot permutation, matching the teacher's
// bfv.Encoder slot-index construction.
func buildSlotPermutation(N uint64) []uint64 {
	logN := uint64(bits.Len64(N) - 1)
	half := N / 2
	mod := 2 * N

	perm := make([]uint64, N)
	gen := uint64(5)
	pow := uint64(1)
	for i := uint64(0); i < half; i++ {
		pos1 := (pow - 1) / 2
		pos2 := (mod - pow - 1) / 2
		perm[i] = bitReverse(pos1, logN)
		perm[i+half] = bitReverse(pos2, logN)
		pow = (pow * gen) % mod
	}
	return perm
}

func bitReverse(index, bitLen uint64) (r uint64) {
	for i := uint64(0); i < bitLen; i++ {
		r |= ((index >> i) & 1) << (bitLen - i - 1)
	}
	return
}
