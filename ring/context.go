package ring

import "math/big"

// Context is an ordered chain of moduli {q_0, ..., q_{L-1}} together with
// their NTT operators and precomputed CRT constants (spec.md §3 "Polynomial
// context"). It is immutable once built and shared by reference: every Poly
// built from a Context holds a non-owning pointer to it.
type Context struct {
	N       uint64
	Moduli  []Modulus
	Tables  []*NTTTable
	Q       *big.Int   // product of all moduli
	QHat    []*big.Int // Q / q_i
	QHatInv []uint64   // (Q/q_i)^-1 mod q_i
}

// NewContext builds a Context over the given degree N and modulus chain.
// Every modulus must be prime and satisfy q = 1 (mod 2N) so that NTT is
// available (spec.md §4.1).
func NewContext(N uint64, moduli []uint64) (*Context, error) {
	if N == 0 || N&(N-1) != 0 {
		return nil, newError(ErrLengthMismatch, "ring: N=%d is not a power of two", N)
	}

	ctx := &Context{N: N}
	ctx.Moduli = make([]Modulus, len(moduli))
	ctx.Tables = make([]*NTTTable, len(moduli))

	for i, q := range moduli {
		table, err := NewNTTTable(q, N)
		if err != nil {
			return nil, err
		}
		ctx.Tables[i] = table
		ctx.Moduli[i] = table.Modulus
	}

	ctx.Q = big.NewInt(1)
	for _, q := range moduli {
		ctx.Q.Mul(ctx.Q, new(big.Int).SetUint64(q))
	}

	ctx.QHat = make([]*big.Int, len(moduli))
	ctx.QHatInv = make([]uint64, len(moduli))
	for i, q := range moduli {
		qi := new(big.Int).SetUint64(q)
		qhat := new(big.Int).Quo(ctx.Q, qi)
		ctx.QHat[i] = qhat

		qhatModqi := new(big.Int).Mod(qhat, qi)
		inv := new(big.Int).ModInverse(qhatModqi, qi)
		if inv == nil {
			return nil, newNonInvertibleError(qhatModqi.Uint64(), q)
		}
		ctx.QHatInv[i] = inv.Uint64()
	}

	return ctx, nil
}

// Level returns L-1, the index of the last modulus in the chain.
func (ctx *Context) Level() int { return len(ctx.Moduli) - 1 }

// ModulusAt returns q_i.
func (ctx *Context) ModulusAt(i int) uint64 { return ctx.Moduli[i].Q }

// NewPoly returns a new all-zero polynomial in the given representation.
func (ctx *Context) NewPoly(repr Representation) *Poly {
	coeffs := make([][]uint64, len(ctx.Moduli))
	for i := range coeffs {
		coeffs[i] = make([]uint64, ctx.N)
	}
	return &Poly{ctx: ctx, Repr: repr, Coeffs: coeffs}
}

// Equal reports whether two contexts share the same degree and modulus
// chain. It returns true at once for identical pointers and otherwise compares
// by value; Poly operations check their operands with it (see
// Poly.requireSameContext).
func (ctx *Context) Equal(other *Context) bool {
	if ctx == other {
		return true
	}
	if ctx == nil || other == nil || ctx.N != other.N || len(ctx.Moduli) != len(other.Moduli) {
		return false
	}
	for i := range ctx.Moduli {
		if ctx.Moduli[i].Q != other.Moduli[i].Q {
			return false
		}
	}
	return true
}

// PolyToBigint reconstructs every coefficient of p (assumed to be in
// Coefficient representation) into a big.Int via CRT, used for testing and
// for decoding the scaled plaintext in scale_m verification (spec.md §8
// property 4).
func (ctx *Context) PolyToBigint(p *Poly) []*big.Int {
	out := make([]*big.Int, ctx.N)
	tmp := new(big.Int)
	for x := uint64(0); x < ctx.N; x++ {
		acc := new(big.Int)
		for i, m := range ctx.Moduli {
			residue := m.Mul(p.Coeffs[i][x], ctx.QHatInv[i])
			tmp.SetUint64(residue)
			tmp.Mul(tmp, ctx.QHat[i])
			acc.Add(acc, tmp)
		}
		acc.Mod(acc, ctx.Q)
		out[x] = acc
	}
	return out
}
