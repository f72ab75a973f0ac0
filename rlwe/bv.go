package rlwe

import (
	"io"

	"github.com/nulltea/bfv/ring"
)

// BVKeySwitcher holds a BV-variant key-switching key (spec.md §4.5): one
// (c0_i, c1_i) ciphertext pair per modulus in the target (ksk) context,
// satisfying c0_i + c1_i*s ~= g_i*a (mod Q) with g_i the i-th CRT idempotent
// of the target context (1 mod q_i, 0 mod every other q_j).
type BVKeySwitcher struct {
	ctx *ring.Context

	c0 []*ring.Poly // Evaluation form, over ctx
	c1 []*ring.Poly

	seed [32]byte
}

// NewBVKeySwitcher generates a key-switching key letting a polynomial
// expressed under sIn be re-expressed under sOut, with both secrets living
// over ctx. sigma/bound parameterize the Gaussian error distribution. The
// c1 stream is drawn from a freshly generated seed and stored only as that
// seed (spec.md §4.5, §6): the caller can always regenerate it bit-exact via
// RegenerateC1Stream(ctx, ksk.Seed(), L).
func NewBVKeySwitcher(ctx *ring.Context, sIn, sOut *SecretKey, sigma float64, bound uint64, errRng io.Reader) (*BVKeySwitcher, error) {
	seedRng, err := ring.NewKeyedPRNG(nil)
	if err != nil {
		return nil, err
	}
	return newBVKeySwitcherWithSeed(ctx, seedRng.Seed(), sIn, sOut, sigma, bound, errRng)
}

// newBVKeySwitcherWithSeed is NewBVKeySwitcher with an explicit c1 seed,
// used by tests to exercise spec.md §8 scenario S6 (same-seed key
// equality).
func newBVKeySwitcherWithSeed(ctx *ring.Context, seed [32]byte, sIn, sOut *SecretKey, sigma float64, bound uint64, errRng io.Reader) (*BVKeySwitcher, error) {
	c1, err := RegenerateC1Stream(ctx, seed, len(ctx.Moduli))
	if err != nil {
		return nil, err
	}

	sInEval := sIn.AsEvaluation(ctx)
	sOutEval := sOut.AsEvaluation(ctx)

	ksk := &BVKeySwitcher{ctx: ctx, seed: seed, c1: c1, c0: make([]*ring.Poly, len(ctx.Moduli))}

	for i := range ctx.Moduli {
		giTimesSIn := ctx.NewPoly(ring.Evaluation)
		copy(giTimesSIn.Coeffs[i], sInEval.Coeffs[i])

		ei, err := ring.RandomGaussian(ctx, sigma, bound, errRng)
		if err != nil {
			return nil, err
		}
		ei.ChangeRepresentation(ring.Evaluation)

		c1SOut := ctx.NewPoly(ring.Evaluation)
		if err := c1SOut.Mul(c1[i], sOutEval); err != nil {
			return nil, err
		}

		c0i := ctx.NewPoly(ring.Evaluation)
		if err := c0i.Add(giTimesSIn, ei); err != nil {
			return nil, err
		}
		if err := c0i.Sub(c0i, c1SOut); err != nil {
			return nil, err
		}
		ksk.c0[i] = c0i
	}

	return ksk, nil
}

// Seed returns the 32-byte seed that deterministically regenerates this
// key's c1 stream (spec.md §6).
func (ksk *BVKeySwitcher) Seed() [32]byte { return ksk.seed }

// Switch implements spec.md §4.5's switch(poly_in): poly_in must be in
// Coefficient form over a context whose moduli are a prefix of ksk.ctx's.
// For each residue row i, the row is lifted into ksk.ctx as a Coefficient
// poly, converted to Evaluation, and accumulated against c0_i/c1_i.
func (ksk *BVKeySwitcher) Switch(polyIn *ring.Poly) (c0Out, c1Out *ring.Poly, err error) {
	if polyIn.Repr != ring.Coefficient {
		return nil, nil, newRepresentationMismatchError()
	}
	if polyIn.Level() > ksk.ctx.Level() {
		return nil, nil, newLevelOutOfRangeError(polyIn.Level(), ksk.ctx.Level())
	}

	c0Out = ksk.ctx.NewPoly(ring.Evaluation)
	c1Out = ksk.ctx.NewPoly(ring.Evaluation)

	for i := 0; i <= polyIn.Level(); i++ {
		lifted, err := ring.TryConvertFromUint64(ksk.ctx, polyIn.Coeffs[i])
		if err != nil {
			return nil, nil, err
		}
		lifted.ChangeRepresentation(ring.Evaluation)

		term0 := ksk.ctx.NewPoly(ring.Evaluation)
		if err := term0.Mul(lifted, ksk.c0[i]); err != nil {
			return nil, nil, err
		}
		term1 := ksk.ctx.NewPoly(ring.Evaluation)
		if err := term1.Mul(lifted, ksk.c1[i]); err != nil {
			return nil, nil, err
		}

		if err := c0Out.AddInplace(term0); err != nil {
			return nil, nil, err
		}
		if err := c1Out.AddInplace(term1); err != nil {
			return nil, nil, err
		}
	}

	return c0Out, c1Out, nil
}

// RegenerateC1Stream deterministically reproduces the count Evaluation-form
// uniform polynomials drawn from seed, in draw order (spec.md §8 scenario
// S5). It is the only way a serializer needs to reconstruct a key's c1
// stream: only c0 is transmitted alongside the seed.
func RegenerateC1Stream(ctx *ring.Context, seed [32]byte, count int) ([]*ring.Poly, error) {
	rng, err := ring.NewKeyedPRNG(seed[:])
	if err != nil {
		return nil, err
	}
	out := make([]*ring.Poly, count)
	for i := 0; i < count; i++ {
		p, err := ring.Random(ctx, rng)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
