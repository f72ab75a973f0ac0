package ring

import "math/big"

// Representation tags whether a Poly's coefficients are in the Coefficient
// (time) domain or the Evaluation (NTT) domain. It is a runtime-checked tag
// rather than encoded in the type, matching the teacher's approach
// (ring/ring_poly.go): a Poly is always a [][]uint64 matrix, and operations
// assert on this field instead of the compiler enforcing it.
type Representation int

const (
	// Coefficient marks a polynomial in the standard coefficient basis.
	Coefficient Representation = iota
	// Evaluation marks a polynomial in the NTT (evaluation) domain.
	Evaluation
)

// Poly is a 2-D array of residues (modulus-index x coefficient-index),
// tagged with a Representation, as specified in spec.md §3. A Poly
// exclusively owns its residue buffer; the Context it points to is a
// shared, immutable reference.
type Poly struct {
	ctx    *Context
	Repr   Representation
	Coeffs [][]uint64
}

// Context returns the (shared, immutable) context this polynomial was built
// from.
func (p *Poly) Context() *Context { return p.ctx }

// Level returns the index of the last modulus this polynomial carries.
func (p *Poly) Level() int { return len(p.Coeffs) - 1 }

func (p *Poly) requireSameContext(q *Poly) error {
	if !p.ctx.Equal(q.ctx) {
		return newContextMismatchError()
	}
	return nil
}

func (p *Poly) requireSameRepresentation(q *Poly) error {
	if p.Repr != q.Repr {
		return newRepresentationMismatchError()
	}
	return nil
}

// CopyNew returns a deep copy of p.
func (p *Poly) CopyNew() *Poly {
	out := &Poly{ctx: p.ctx, Repr: p.Repr, Coeffs: make([][]uint64, len(p.Coeffs))}
	for i := range p.Coeffs {
		out.Coeffs[i] = append([]uint64(nil), p.Coeffs[i]...)
	}
	return out
}

// Zero sets every coefficient of p to zero.
func (p *Poly) Zero() {
	for i := range p.Coeffs {
		for j := range p.Coeffs[i] {
			p.Coeffs[i][j] = 0
		}
	}
}

// TryConvertFromUint64 builds a Coefficient-form Poly in ctx from m, which
// must have exactly ctx.N entries (spec.md §4.2). Each entry is reduced
// modulo every q_i.
func TryConvertFromUint64(ctx *Context, m []uint64) (*Poly, error) {
	if uint64(len(m)) != ctx.N {
		return nil, newLengthMismatchError(len(m), int(ctx.N))
	}
	p := ctx.NewPoly(Coefficient)
	for i, mod := range ctx.Moduli {
		for j, v := range m {
			p.Coeffs[i][j] = v % mod.Q
		}
	}
	return p, nil
}

// TryConvertFromInt64 builds a Coefficient-form Poly in ctx from signed
// input m, which must have exactly ctx.N entries.
func TryConvertFromInt64(ctx *Context, m []int64) (*Poly, error) {
	if uint64(len(m)) != ctx.N {
		return nil, newLengthMismatchError(len(m), int(ctx.N))
	}
	p := ctx.NewPoly(Coefficient)
	for i, mod := range ctx.Moduli {
		mod.ReduceVecI64(m, p.Coeffs[i])
	}
	return p, nil
}

// TryConvertFromBigint builds a Coefficient-form Poly in ctx from m, which
// must have exactly ctx.N entries.
func TryConvertFromBigint(ctx *Context, m []*big.Int) (*Poly, error) {
	if uint64(len(m)) != ctx.N {
		return nil, newLengthMismatchError(len(m), int(ctx.N))
	}
	p := ctx.NewPoly(Coefficient)
	tmp := new(big.Int)
	for i, mod := range ctx.Moduli {
		qi := new(big.Int).SetUint64(mod.Q)
		for j, v := range m {
			tmp.Mod(v, qi)
			p.Coeffs[i][j] = tmp.Uint64()
		}
	}
	return p, nil
}

// ChangeRepresentation converts p in place between Coefficient and
// Evaluation form via the context's NTT operator. It is a bit-exact
// involution (spec.md §8 property 1).
func (p *Poly) ChangeRepresentation(to Representation) {
	if p.Repr == to {
		return
	}
	switch to {
	case Evaluation:
		for i, t := range p.ctx.Tables {
			t.Forward(p.Coeffs[i], p.Coeffs[i])
		}
	case Coefficient:
		for i, t := range p.ctx.Tables {
			t.Backward(p.Coeffs[i], p.Coeffs[i])
		}
	}
	p.Repr = to
}

// Add sets p = a + b, row by row. a and b must share p's context and
// representation.
func (p *Poly) Add(a, b *Poly) error {
	if err := a.requireSameContext(b); err != nil {
		return err
	}
	if err := a.requireSameRepresentation(b); err != nil {
		return err
	}
	for i, mod := range p.ctx.Moduli {
		mod.AddVec(a.Coeffs[i], b.Coeffs[i], p.Coeffs[i])
	}
	p.Repr = a.Repr
	return nil
}

// Sub sets p = a - b, row by row.
func (p *Poly) Sub(a, b *Poly) error {
	if err := a.requireSameContext(b); err != nil {
		return err
	}
	if err := a.requireSameRepresentation(b); err != nil {
		return err
	}
	for i, mod := range p.ctx.Moduli {
		mod.SubVec(a.Coeffs[i], b.Coeffs[i], p.Coeffs[i])
	}
	p.Repr = a.Repr
	return nil
}

// Neg sets p = -a, row by row.
func (p *Poly) Neg(a *Poly) {
	for i, mod := range p.ctx.Moduli {
		mod.NegVec(a.Coeffs[i], p.Coeffs[i])
	}
	p.Repr = a.Repr
}

// Mul sets p = a * b, row by row. a and b must share p's context and be in
// Evaluation representation (coefficient-wise product is only the ring
// product in the NTT domain).
func (p *Poly) Mul(a, b *Poly) error {
	if err := a.requireSameContext(b); err != nil {
		return err
	}
	if err := a.requireSameRepresentation(b); err != nil {
		return err
	}
	if a.Repr != Evaluation {
		return newRepresentationMismatchError()
	}
	for i, mod := range p.ctx.Moduli {
		mod.MulVec(a.Coeffs[i], b.Coeffs[i], p.Coeffs[i])
	}
	p.Repr = a.Repr
	return nil
}

// AddInplace adds b into p.
func (p *Poly) AddInplace(b *Poly) error { return p.Add(p, b) }

// SubInplace subtracts b from p.
func (p *Poly) SubInplace(b *Poly) error { return p.Sub(p, b) }

// MulInplace multiplies p by b.
func (p *Poly) MulInplace(b *Poly) error { return p.Mul(p, b) }

// ScalarMulVec multiplies row i of p by scalars[i] mod q_i, for a row
// vector scalars of length matching the modulus chain (spec.md §4.2).
func (p *Poly) ScalarMulVec(a *Poly, scalars []uint64) error {
	if len(scalars) != len(p.ctx.Moduli) {
		return newLengthMismatchError(len(scalars), len(p.ctx.Moduli))
	}
	for i, mod := range p.ctx.Moduli {
		mod.ScalarMulVec(a.Coeffs[i], scalars[i], p.Coeffs[i])
	}
	p.Repr = a.Repr
	return nil
}

// ScalarMul multiplies every row of p by the same scalar mod its q_i.
func (p *Poly) ScalarMul(a *Poly, scalar uint64) {
	for i, mod := range p.ctx.Moduli {
		mod.ScalarMulVec(a.Coeffs[i], scalar%mod.Q, p.Coeffs[i])
	}
	p.Repr = a.Repr
}

// CopyLvl copies the first level+1 rows of a into p.
func (p *Poly) CopyLvl(level int, a *Poly) {
	for i := 0; i <= level; i++ {
		copy(p.Coeffs[i], a.Coeffs[i])
	}
}

// Equal reports whether p and q are coefficient-wise identical (same
// context, same representation, same residues).
func (p *Poly) Equal(q *Poly) bool {
	if !p.ctx.Equal(q.ctx) || p.Repr != q.Repr || len(p.Coeffs) != len(q.Coeffs) {
		return false
	}
	for i := range p.Coeffs {
		for j := range p.Coeffs[i] {
			if p.Coeffs[i][j] != q.Coeffs[i][j] {
				return false
			}
		}
	}
	return true
}
