package ring

import (
	"math/big"
	"math/bits"
)

// MForm switches a to the Montgomery domain by computing a*2^64 mod q.
func MForm(a, q uint64, bred []uint64) (r uint64) {
	hi, lo := bits.Mul64(a, bred[1])
	_ = lo
	r = -(a*bred[0] + hi) * q
	if r >= q {
		r -= q
	}
	return
}

// InvMForm switches a from the Montgomery domain back to the standard domain
// by computing a*(1/2^64) mod q.
func InvMForm(a, q, qInv uint64) (r uint64) {
	r, _ = bits.Mul64(a*qInv, q)
	r = q - r
	if r >= q {
		r -= q
	}
	return
}

// MRedParams computes qInv = q^-1 mod 2^64, the parameter required by MRed.
func MRedParams(q uint64) (qInv uint64) {
	qInv = 1
	x := q
	for i := 0; i < 63; i++ {
		qInv *= x
		x *= x
	}
	return
}

// MRed computes x * y * (1/2^64) mod q, the Montgomery product.
func MRed(x, y, q, qInv uint64) (r uint64) {
	hi, lo := bits.Mul64(x, y)
	m := lo * qInv
	mh, _ := bits.Mul64(m, q)
	r = hi - mh + q
	if r >= q {
		r -= q
	}
	return
}

// MRedConstant computes x * y * (1/2^64) mod q, result in [0, 2q).
func MRedConstant(x, y, q, qInv uint64) (r uint64) {
	hi, lo := bits.Mul64(x, y)
	m := lo * qInv
	mh, _ := bits.Mul64(m, q)
	r = hi - mh + q
	return
}

// BRedParams computes the Barrett reduction parameters for q: returns
// (2^128/q)>>64 and (2^128/q) mod 2^64.
func BRedParams(q uint64) []uint64 {
	r := new(big.Int).Lsh(big.NewInt(1), 128)
	r.Quo(r, new(big.Int).SetUint64(q))
	hi := new(big.Int).Rsh(r, 64).Uint64()
	lo := r.Uint64()
	return []uint64{hi, lo}
}

// BRedAdd reduces a single 64-bit word x mod q using Barrett reduction.
func BRedAdd(x, q uint64, bred []uint64) (r uint64) {
	s0, _ := bits.Mul64(x, bred[0])
	r = x - s0*q
	if r >= q {
		r -= q
	}
	return
}

// BRed computes x*y mod q using Barrett reduction.
func BRed(x, y, q uint64, bred []uint64) (r uint64) {
	ahi, alo := bits.Mul64(x, y)

	lhi, _ := bits.Mul64(alo, bred[1])

	mhi, mlo := bits.Mul64(alo, bred[0])
	s0, carry := bits.Add64(mlo, lhi, 0)
	s1 := mhi + carry

	mhi, mlo = bits.Mul64(ahi, bred[1])
	_, carry = bits.Add64(mlo, s0, 0)
	lhi = mhi + carry

	s0 = ahi*bred[0] + s1 + lhi

	r = alo - s0*q
	if r >= q {
		r -= q
	}
	return
}

// CRed reduces a, assumed to lie in [0, 2q), mod q.
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

// NegMod returns -a mod q for a in [0, q).
func NegMod(a, q uint64) uint64 {
	if a == 0 {
		return 0
	}
	return q - a
}
