package ring

import "math/big"

// Modulus is a single 30-62 bit prime q with its precomputed Barrett and
// Montgomery reduction constants. It is the atomic unit the RNS chain is
// built from: every Context row operates modulo exactly one Modulus.
type Modulus struct {
	Q         uint64
	BRedConst []uint64 // Barrett reduction constants, see BRedParams.
	MRedConst uint64   // Montgomery reduction constant, see MRedParams.
}

// NewModulus builds the reduction constants for q. q is assumed prime and
// odd; callers that need NTT additionally call GenerateNTTFriendlyPrimes to
// pick q with q = 1 mod 2N.
func NewModulus(q uint64) Modulus {
	m := Modulus{Q: q, BRedConst: BRedParams(q)}
	if q&(q-1) != 0 {
		m.MRedConst = MRedParams(q)
	}
	return m
}

// Reduce returns x mod q for x potentially as large as 2q-1.
func (m Modulus) Reduce(x uint64) uint64 {
	return BRedAdd(x, m.Q, m.BRedConst)
}

// Add returns x+y mod q.
func (m Modulus) Add(x, y uint64) uint64 {
	return CRed(x+y, m.Q)
}

// Sub returns x-y mod q.
func (m Modulus) Sub(x, y uint64) uint64 {
	if x >= y {
		return x - y
	}
	return m.Q - y + x
}

// Neg returns -x mod q.
func (m Modulus) Neg(x uint64) uint64 {
	return NegMod(x, m.Q)
}

// Mul returns x*y mod q.
func (m Modulus) Mul(x, y uint64) uint64 {
	return BRed(x, y, m.Q, m.BRedConst)
}

// AddVec computes a[i]+b[i] mod q for every coefficient.
func (m Modulus) AddVec(a, b, out []uint64) {
	for i := range a {
		out[i] = CRed(a[i]+b[i], m.Q)
	}
}

// SubVec computes a[i]-b[i] mod q for every coefficient.
func (m Modulus) SubVec(a, b, out []uint64) {
	q := m.Q
	for i := range a {
		if a[i] >= b[i] {
			out[i] = a[i] - b[i]
		} else {
			out[i] = q - b[i] + a[i]
		}
	}
}

// NegVec computes -a[i] mod q for every coefficient.
func (m Modulus) NegVec(a, out []uint64) {
	for i := range a {
		out[i] = NegMod(a[i], m.Q)
	}
}

// MulVec computes a[i]*b[i] mod q for every coefficient.
func (m Modulus) MulVec(a, b, out []uint64) {
	for i := range a {
		out[i] = BRed(a[i], b[i], m.Q, m.BRedConst)
	}
}

// ScalarMulVec computes a[i]*scalar mod q for every coefficient.
func (m Modulus) ScalarMulVec(a []uint64, scalar uint64, out []uint64) {
	for i := range a {
		out[i] = BRed(a[i], scalar, m.Q, m.BRedConst)
	}
}

// ReduceVecI64 reduces a signed-valued slice into [0, q).
func (m Modulus) ReduceVecI64(a []int64, out []uint64) {
	q := int64(m.Q)
	for i, v := range a {
		v %= q
		if v < 0 {
			v += q
		}
		out[i] = uint64(v)
	}
}

// Center maps x in [0, q) to the centered representative in (-q/2, q/2].
func (m Modulus) Center(x uint64) int64 {
	if x > m.Q>>1 {
		return int64(x) - int64(m.Q)
	}
	return int64(x)
}

// Inv returns the modular inverse of x mod q via Fermat's little theorem.
// It returns an error if x is not invertible (x = 0 mod q).
func (m Modulus) Inv(x uint64) (uint64, error) {
	if x%m.Q == 0 {
		return 0, newNonInvertibleError(x, m.Q)
	}
	return ModExp(x, m.Q-2, m.Q), nil
}

// ModExp computes base^exp mod q using math/big.Int.Exp.
func ModExp(base, exp, q uint64) uint64 {
	result := uint64(1)
	b := new(big.Int).SetUint64(base)
	e := new(big.Int).SetUint64(exp)
	qq := new(big.Int).SetUint64(q)
	r := new(big.Int).Exp(b, e, qq)
	result = r.Uint64()
	return result
}
