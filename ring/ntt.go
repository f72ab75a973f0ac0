package ring

import "math/bits"

// NTTTable holds the forward/inverse twiddle factors bound to one (q, N)
// pair, in bit-reversed order and Montgomery form, as generated by the
// teacher's ring.Context.GenNTTParams (ring/ring_context.go).
type NTTTable struct {
	Modulus

	N uint64

	psi    []uint64 // powers of the 2N-th primitive root, bit-reversed, Montgomery form
	psiInv []uint64 // powers of its inverse, bit-reversed, Montgomery form
	nInv   uint64   // N^-1 mod q, Montgomery form
}

// NewNTTTable builds the forward/inverse NTT twiddle tables for a negacyclic
// transform of degree N modulo q. q must be prime and satisfy q = 1 (mod 2N).
func NewNTTTable(q, N uint64) (*NTTTable, error) {
	if !NTTFriendly(q, N) {
		return nil, newError(ErrModulusGenerationExhausted, "ring: modulus %d is not NTT-friendly for N=%d", q, N)
	}

	m := NewModulus(q)
	t := &NTTTable{Modulus: m, N: N}

	g := primitiveRoot(q)
	twoN := 2 * N
	power := (q - 1) / twoN
	powerInv := (q - 1) - power

	psi := MForm(ModExp(g, power, q), q, m.BRedConst)
	psiInv := MForm(ModExp(g, powerInv, q), q, m.BRedConst)

	t.psi = make([]uint64, N)
	t.psiInv = make([]uint64, N)

	bitLen := uint64(bits.Len64(N) - 1)

	t.psi[0] = MForm(1, q, m.BRedConst)
	t.psiInv[0] = MForm(1, q, m.BRedConst)

	for j := uint64(1); j < N; j++ {
		prev := bitReverse64(j-1, bitLen)
		next := bitReverse64(j, bitLen)
		t.psi[next] = MRed(t.psi[prev], psi, q, m.MRedConst)
		t.psiInv[next] = MRed(t.psiInv[prev], psiInv, q, m.MRedConst)
	}

	t.nInv = MForm(ModExp(N, q-2, q), q, m.BRedConst)

	return t, nil
}

func bitReverse64(index, bitLen uint64) (r uint64) {
	for i := uint64(0); i < bitLen; i++ {
		r |= ((index >> i) & 1) << (bitLen - i - 1)
	}
	return
}

func butterfly(U, V, psi, q, qInv uint64) (uint64, uint64) {
	if U > 2*q {
		U -= 2 * q
	}
	V = MRedConstant(V, psi, q, qInv)
	return U + V, U + 2*q - V
}

func invButterfly(U, V, psi, q, qInv uint64) (uint64, uint64) {
	X := U + V
	if X > 2*q {
		X -= 2 * q
	}
	Y := MRedConstant(U+2*q-V, psi, q, qInv)
	return X, Y
}

// Forward computes the negacyclic NTT of in, writing the result to out.
// in and out may alias.
func (t *NTTTable) Forward(in, out []uint64) {
	N := t.N
	q := t.Q
	qInv := t.MRedConst

	tt := N >> 1
	psi := t.psi[1]
	for j := uint64(0); j < tt; j++ {
		out[j], out[j+tt] = butterfly(in[j], in[j+tt], psi, q, qInv)
	}

	for m := uint64(2); m < N; m <<= 1 {
		tt >>= 1
		for i := uint64(0); i < m; i++ {
			j1 := (i * tt) << 1
			j2 := j1 + tt - 1
			psi := t.psi[m+i]
			for j := j1; j <= j2; j++ {
				out[j], out[j+tt] = butterfly(out[j], out[j+tt], psi, q, qInv)
			}
		}
	}

	for i := uint64(0); i < N; i++ {
		out[i] = BRedAdd(out[i], q, t.BRedConst)
	}
}

// Backward computes the inverse negacyclic NTT of in, writing the result to
// out. in and out may alias. Forward and Backward are bit-exact inverses of
// one another (spec.md §8 property 1).
func (t *NTTTable) Backward(in, out []uint64) {
	N := t.N
	q := t.Q
	qInv := t.MRedConst

	tt := uint64(1)
	j1 := uint64(0)
	h := N >> 1

	for i := uint64(0); i < h; i++ {
		psi := t.psiInv[h+i]
		out[j1], out[j1+tt] = invButterfly(in[j1], in[j1+tt], psi, q, qInv)
		j1 += tt << 1
	}

	tt <<= 1
	for m := N >> 1; m > 1; m >>= 1 {
		j1 = 0
		h = m >> 1
		for i := uint64(0); i < h; i++ {
			j2 := j1 + tt - 1
			psi := t.psiInv[h+i]
			for j := j1; j <= j2; j++ {
				out[j], out[j+tt] = invButterfly(out[j], out[j+tt], psi, q, qInv)
			}
			j1 += tt << 1
		}
		tt <<= 1
	}

	for j := uint64(0); j < N; j++ {
		out[j] = MRed(out[j], t.nInv, q, qInv)
	}
}
