package ring

import "math/big"

// BasisExtender holds the precomputed CRT constants needed to switch a
// polynomial's residues from a context Q into an auxiliary context P and
// back, without the floating-point "v" correction term (spec.md §4.2,
// Open Question 3). It is built once per (ctxQ, ctxP) pair and reused.
//
// Grounded on the teacher's ring.BasisExtender / Context.ExtendBasisApproximate
// (ring/ring_basis_extension.go), generalized to also provide the inverse
// direction (P -> Q) needed by ApproxModDown.
type BasisExtender struct {
	ctxQ, ctxP *Context

	// qHatModP[i][j] = (Q/q_i) mod p_j.
	qHatModP [][]uint64
	// pHatModQ[j][i] = (P/p_j) mod q_i.
	pHatModQ [][]uint64
	// pHatInvModP[j] = (P/p_j)^-1 mod p_j.
	pHatInvModP []uint64
	// pInvModQ[i] = P^-1 mod q_i.
	pInvModQ []uint64
}

// NewBasisExtender precomputes the CRT constants to switch between ctxQ and
// ctxP in both directions.
func NewBasisExtender(ctxQ, ctxP *Context) *BasisExtender {
	be := &BasisExtender{ctxQ: ctxQ, ctxP: ctxP}

	be.qHatModP = make([][]uint64, len(ctxQ.Moduli))
	for i := range ctxQ.Moduli {
		row := make([]uint64, len(ctxP.Moduli))
		for j, pj := range ctxP.Moduli {
			row[j] = new(big.Int).Mod(ctxQ.QHat[i], big.NewInt(0).SetUint64(pj.Q)).Uint64()
		}
		be.qHatModP[i] = row
	}

	be.pHatModQ = make([][]uint64, len(ctxP.Moduli))
	for j := range ctxP.Moduli {
		row := make([]uint64, len(ctxQ.Moduli))
		for i, qi := range ctxQ.Moduli {
			row[i] = new(big.Int).Mod(ctxP.QHat[j], big.NewInt(0).SetUint64(qi.Q)).Uint64()
		}
		be.pHatModQ[j] = row
	}

	be.pHatInvModP = append([]uint64(nil), ctxP.QHatInv...)

	be.pInvModQ = make([]uint64, len(ctxQ.Moduli))
	for i, qi := range ctxQ.Moduli {
		qiB := big.NewInt(0).SetUint64(qi.Q)
		inv := new(big.Int).ModInverse(new(big.Int).Mod(ctxP.Q, qiB), qiB)
		be.pInvModQ[i] = inv.Uint64()
	}

	return be
}

// ApproxSwitchCRTBasis implements approx_switch_crt_basis: it takes a
// polynomial in Coefficient form over ctxQ and produces its approximate
// image over ctxP, i.e. for every coefficient index j:
//
//	y_j = sum_i ([x_{i,j} * QHatInv_i]_{q_i}) * QHat_i
//	out[k][j] = [y_j]_{p_k}
//
// The floating-point correction term that would subtract the implied
// multiple of Q is deliberately omitted (spec.md Open Question 3): the
// result equals x mod P only up to an additive error bounded by (L/2)*Q,
// where L = len(ctxQ.Moduli) (spec.md §8 property 4). This is the origin of
// the O(L*q_i) noise term carried through key-switching (spec.md §4.5/§4.6).
func (be *BasisExtender) ApproxSwitchCRTBasis(in *Poly) (*Poly, error) {
	if !in.ctx.Equal(be.ctxQ) {
		return nil, newContextMismatchError()
	}
	if in.Repr != Coefficient {
		return nil, newRepresentationMismatchError()
	}

	out := be.ctxP.NewPoly(Coefficient)

	y := make([]uint64, len(be.ctxQ.Moduli))
	acc := new(big.Int)
	term := new(big.Int)

	for x := uint64(0); x < be.ctxQ.N; x++ {
		for i, qi := range be.ctxQ.Moduli {
			y[i] = qi.Mul(in.Coeffs[i][x], be.ctxQ.QHatInv[i])
		}

		for k, pk := range be.ctxP.Moduli {
			acc.SetUint64(0)
			for i := range be.ctxQ.Moduli {
				term.SetUint64(y[i])
				term.Mul(term, new(big.Int).SetUint64(be.qHatModP[i][k]))
				acc.Add(acc, term)
			}
			acc.Mod(acc, new(big.Int).SetUint64(pk.Q))
			out.Coeffs[k][x] = acc.Uint64()
		}
	}

	return out, nil
}

// ApproxModDown implements approx_mod_down: given a polynomial over the
// combined QP chain, passed as its Q-rows (inQ, over ctxQ) and its P-rows
// (inP, over ctxP), both in Coefficient form, it switches the P-rows back into
// Q with the same approximate CRT machinery as ApproxSwitchCRTBasis,
// subtracts them from the native Q-rows, and multiplies by P^-1 mod q_i
// row-wise, returning a polynomial over ctxQ. Representation assumption: the
// input rows must already be in Coefficient form (spec.md §4.2).
func (be *BasisExtender) ApproxModDown(inQ, inP *Poly) (*Poly, error) {
	if !inQ.ctx.Equal(be.ctxQ) || !inP.ctx.Equal(be.ctxP) {
		return nil, newContextMismatchError()
	}
	if inQ.Repr != Coefficient || inP.Repr != Coefficient {
		return nil, newRepresentationMismatchError()
	}

	pModQ, err := be.switchPtoQ(inP)
	if err != nil {
		return nil, err
	}

	out := be.ctxQ.NewPoly(Coefficient)
	for i, qi := range be.ctxQ.Moduli {
		for x := uint64(0); x < be.ctxQ.N; x++ {
			diff := qi.Sub(inQ.Coeffs[i][x], pModQ.Coeffs[i][x])
			out.Coeffs[i][x] = qi.Mul(diff, be.pInvModQ[i])
		}
	}
	return out, nil
}

// switchPtoQ switches a Coefficient-form polynomial over ctxP into ctxQ,
// using the same approximate CRT machinery as ApproxSwitchCRTBasis but in
// the P -> Q direction.
func (be *BasisExtender) switchPtoQ(inP *Poly) (*Poly, error) {
	out := be.ctxQ.NewPoly(Coefficient)

	y := make([]uint64, len(be.ctxP.Moduli))
	acc := new(big.Int)
	term := new(big.Int)

	for x := uint64(0); x < be.ctxP.N; x++ {
		for j, pj := range be.ctxP.Moduli {
			y[j] = pj.Mul(inP.Coeffs[j][x], be.pHatInvModP[j])
		}

		for i, qi := range be.ctxQ.Moduli {
			acc.SetUint64(0)
			for j := range be.ctxP.Moduli {
				term.SetUint64(y[j])
				term.Mul(term, new(big.Int).SetUint64(be.pHatModQ[j][i]))
				acc.Add(acc, term)
			}
			acc.Mod(acc, new(big.Int).SetUint64(qi.Q))
			out.Coeffs[i][x] = acc.Uint64()
		}
	}

	return out, nil
}
