package rlwe

import (
	"io"
	"math/big"

	"github.com/nulltea/bfv/ring"
)

// digitGroup holds the precomputed per-digit switching machinery needed by
// HybridKeySwitcher.Switch: the digit's own sub-context, the context of
// every remaining QP row, the basis extender between them, and the mapping
// from the extender's output rows back to their position in QP.
type digitGroup struct {
	start, end int // row range [start, end) within ctxQ this digit owns

	ctxDigit *ring.Context
	ctxRest  *ring.Context
	extender *ring.BasisExtender
	restToQP []int
}

// HybridKeySwitcher holds a Hybrid-variant key-switching key (spec.md §4.6):
// alpha = ceil(L/dnum) digit groups, each encrypting g_j*a in a combined QP
// context where P is a fresh auxiliary modulus chain, divided back out of
// the result by approx_mod_down.
//
// Constraint (spec.md Open Question 2, preserved deliberately): the source
// (ciphertext) context passed to Switch must equal ctxQ, the context this
// key was generated against. The switch step embeds each digit into "the
// remaining Q rows plus P", not into an independently chosen Q' plus P.
type HybridKeySwitcher struct {
	ctxQ  *ring.Context
	ctxP  *ring.Context
	ctxQP *ring.Context

	dnum   int
	digits []digitGroup

	c0 []*ring.Poly // Evaluation form, over ctxQP, one per digit
	c1 []*ring.Poly

	modDown *ring.BasisExtender

	seed [32]byte
}

// NewHybridKeySwitcher builds a Hybrid key-switching key letting a
// polynomial expressed under sIn be re-expressed under sOut. dnum is the
// digit width and auxBits the bit budget of each auxiliary prime (spec.md
// §4.6; the reference scenario uses dnum=3, auxBits=60).
func NewHybridKeySwitcher(ctxQ *ring.Context, dnum, auxBits int, sIn, sOut *SecretKey, sigma float64, bound uint64, errRng io.Reader) (*HybridKeySwitcher, error) {
	L := len(ctxQ.Moduli)
	qModuli := make([]uint64, L)
	for i, m := range ctxQ.Moduli {
		qModuli[i] = m.Q
	}

	alpha := (L + dnum - 1) / dnum

	type digitSpan struct{ start, end int }
	spans := make([]digitSpan, alpha)
	maxBits := 0
	digitQ := make([]*big.Int, alpha)
	for j := 0; j < alpha; j++ {
		start := j * dnum
		end := start + dnum
		if end > L {
			end = L
		}
		spans[j] = digitSpan{start, end}

		qj := big.NewInt(1)
		for i := start; i < end; i++ {
			qj.Mul(qj, new(big.Int).SetUint64(qModuli[i]))
		}
		digitQ[j] = qj
		if bl := qj.BitLen(); bl > maxBits {
			maxBits = bl
		}
	}

	pCount := (maxBits + auxBits - 1) / auxBits
	if pCount < 1 {
		pCount = 1
	}
	pModuli, err := ring.GenerateNTTFriendlyPrimes(ctxQ.N, auxBits, pCount, qModuli)
	if err != nil {
		return nil, err
	}

	ctxP, err := ring.NewContext(ctxQ.N, pModuli)
	if err != nil {
		return nil, err
	}

	qpModuli := append(append([]uint64(nil), qModuli...), pModuli...)
	ctxQP, err := ring.NewContext(ctxQ.N, qpModuli)
	if err != nil {
		return nil, err
	}

	ksk := &HybridKeySwitcher{
		ctxQ:    ctxQ,
		ctxP:    ctxP,
		ctxQP:   ctxQP,
		dnum:    dnum,
		digits:  make([]digitGroup, alpha),
		modDown: ring.NewBasisExtender(ctxQ, ctxP),
	}

	seedRng, err := ring.NewKeyedPRNG(nil)
	if err != nil {
		return nil, err
	}
	ksk.seed = seedRng.Seed()

	c1Stream, err := RegenerateC1Stream(ctxQP, ksk.seed, alpha)
	if err != nil {
		return nil, err
	}
	ksk.c1 = c1Stream

	sInEval := sIn.AsEvaluation(ctxQ)
	sOutQP := sOut.embedQP(ctxQP, L)

	qFull := ctxQ.Q
	pFull := ctxP.Q

	ksk.c0 = make([]*ring.Poly, alpha)

	for j, span := range spans {
		restModuli, restToQP := buildDigitRest(qModuli, pModuli, span.start, span.end)

		ctxDigit, err := ring.NewContext(ctxQ.N, qModuli[span.start:span.end])
		if err != nil {
			return nil, err
		}
		ctxRest, err := ring.NewContext(ctxQ.N, restModuli)
		if err != nil {
			return nil, err
		}

		ksk.digits[j] = digitGroup{
			start:    span.start,
			end:      span.end,
			ctxDigit: ctxDigit,
			ctxRest:  ctxRest,
			extender: ring.NewBasisExtender(ctxDigit, ctxRest),
			restToQP: restToQP,
		}

		qj := digitQ[j]
		qHatJ := new(big.Int).Quo(qFull, qj)
		qHatJInv := new(big.Int).ModInverse(new(big.Int).Mod(qHatJ, qj), qj)
		gj := new(big.Int).Mul(pFull, qHatJ)
		gj.Mul(gj, qHatJInv)

		gjTimesSIn := ctxQP.NewPoly(ring.Evaluation)
		for i := span.start; i < span.end; i++ {
			mod := ctxQP.Moduli[i]
			scalar := new(big.Int).Mod(gj, new(big.Int).SetUint64(mod.Q)).Uint64()
			mod.ScalarMulVec(sInEval.Coeffs[i], scalar, gjTimesSIn.Coeffs[i])
		}

		ej, err := ring.RandomGaussian(ctxQP, sigma, bound, errRng)
		if err != nil {
			return nil, err
		}
		ej.ChangeRepresentation(ring.Evaluation)

		c1SOut := ctxQP.NewPoly(ring.Evaluation)
		if err := c1SOut.Mul(ksk.c1[j], sOutQP); err != nil {
			return nil, err
		}

		c0j := ctxQP.NewPoly(ring.Evaluation)
		if err := c0j.Add(gjTimesSIn, ej); err != nil {
			return nil, err
		}
		if err := c0j.Sub(c0j, c1SOut); err != nil {
			return nil, err
		}
		ksk.c0[j] = c0j
	}

	return ksk, nil
}

// Seed returns the 32-byte seed that deterministically regenerates this
// key's c1 stream (spec.md §6).
func (ksk *HybridKeySwitcher) Seed() [32]byte { return ksk.seed }

// Switch implements spec.md §4.6's switch(poly_in). poly_in must be in
// Coefficient form over exactly ctxQ (the ksk_ctx == ciphertext_ctx
// restriction of spec.md Open Question 2).
func (ksk *HybridKeySwitcher) Switch(polyIn *ring.Poly) (c0Out, c1Out *ring.Poly, err error) {
	if polyIn.Repr != ring.Coefficient {
		return nil, nil, newRepresentationMismatchError()
	}
	if !polyIn.Context().Equal(ksk.ctxQ) {
		return nil, nil, newContextMismatchError()
	}

	c0Acc := ksk.ctxQP.NewPoly(ring.Evaluation)
	c1Acc := ksk.ctxQP.NewPoly(ring.Evaluation)

	for j, dg := range ksk.digits {
		digitPoly := dg.ctxDigit.NewPoly(ring.Coefficient)
		for i := dg.start; i < dg.end; i++ {
			copy(digitPoly.Coeffs[i-dg.start], polyIn.Coeffs[i])
		}

		switched, err := dg.extender.ApproxSwitchCRTBasis(digitPoly)
		if err != nil {
			return nil, nil, err
		}

		uj := ksk.ctxQP.NewPoly(ring.Coefficient)
		for i := dg.start; i < dg.end; i++ {
			copy(uj.Coeffs[i], polyIn.Coeffs[i])
		}
		for k, qpIdx := range dg.restToQP {
			copy(uj.Coeffs[qpIdx], switched.Coeffs[k])
		}
		uj.ChangeRepresentation(ring.Evaluation)

		term0 := ksk.ctxQP.NewPoly(ring.Evaluation)
		if err := term0.Mul(uj, ksk.c0[j]); err != nil {
			return nil, nil, err
		}
		term1 := ksk.ctxQP.NewPoly(ring.Evaluation)
		if err := term1.Mul(uj, ksk.c1[j]); err != nil {
			return nil, nil, err
		}

		if err := c0Acc.AddInplace(term0); err != nil {
			return nil, nil, err
		}
		if err := c1Acc.AddInplace(term1); err != nil {
			return nil, nil, err
		}
	}

	c0Acc.ChangeRepresentation(ring.Coefficient)
	c1Acc.ChangeRepresentation(ring.Coefficient)

	qLen := len(ksk.ctxQ.Moduli)

	c0Q, c0P := splitQP(ksk.ctxQ, ksk.ctxP, c0Acc, qLen)
	c0Out, err = ksk.modDown.ApproxModDown(c0Q, c0P)
	if err != nil {
		return nil, nil, err
	}

	c1Q, c1P := splitQP(ksk.ctxQ, ksk.ctxP, c1Acc, qLen)
	c1Out, err = ksk.modDown.ApproxModDown(c1Q, c1P)
	if err != nil {
		return nil, nil, err
	}

	c0Out.ChangeRepresentation(ring.Evaluation)
	c1Out.ChangeRepresentation(ring.Evaluation)

	return c0Out, c1Out, nil
}

// buildDigitRest builds the modulus chain of every QP row outside
// [start, end) of the Q chain — the remaining Q rows followed by every P
// row — and the mapping from its row index back to the row's position in
// the full QP chain.
func buildDigitRest(qModuli, pModuli []uint64, start, end int) (restModuli []uint64, restToQP []int) {
	for i, q := range qModuli {
		if i >= start && i < end {
			continue
		}
		restModuli = append(restModuli, q)
		restToQP = append(restToQP, i)
	}
	for j, p := range pModuli {
		restModuli = append(restModuli, p)
		restToQP = append(restToQP, len(qModuli)+j)
	}
	return restModuli, restToQP
}

// splitQP splits a Coefficient-form polynomial over a combined QP context
// into its Q-row and P-row halves, each rebuilt as a polynomial over its own
// context (required by ring.BasisExtender.ApproxModDown).
func splitQP(ctxQ, ctxP *ring.Context, combined *ring.Poly, qLen int) (inQ, inP *ring.Poly) {
	inQ = ctxQ.NewPoly(ring.Coefficient)
	for i := 0; i < qLen; i++ {
		copy(inQ.Coeffs[i], combined.Coeffs[i])
	}
	inP = ctxP.NewPoly(ring.Coefficient)
	for i := 0; i < len(ctxP.Moduli); i++ {
		copy(inP.Coeffs[i], combined.Coeffs[qLen+i])
	}
	return inQ, inP
}
