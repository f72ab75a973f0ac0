// Package rlwe implements the BV and Hybrid key-switching engines of
// spec.md §4.5/§4.6: given a polynomial expressed under one secret key, it
// produces a ciphertext pair under a different target secret key whose
// decryption approximates the original.
package rlwe

import (
	"io"

	"github.com/nulltea/bfv/ring"
)

// SecretKey is a ternary {-1,0,1}^N secret, sampled over a base context
// (spec.md §3 "SecretKey"). The same secret value is reused, row-restricted
// or row-extended, across every level and every auxiliary context it is
// needed in — see AsEvaluation and embedQP.
type SecretKey struct {
	Value *ring.Poly // Coefficient form, over the base (full) context
}

// NewSecretKey draws a fresh ternary secret over ctx.
func NewSecretKey(ctx *ring.Context, rng io.Reader) (*SecretKey, error) {
	p, err := ring.RandomTernary(ctx, rng)
	if err != nil {
		return nil, err
	}
	return &SecretKey{Value: p}, nil
}

// AsEvaluation restricts sk to the first ctx.Level()+1 rows of its base
// context and converts to Evaluation form. It requires ctx's moduli chain to
// be a prefix of the chain sk was sampled over (true for every level context
// produced by bfv.NewParametersFromLiteral when sk is sampled at level 0).
func (sk *SecretKey) AsEvaluation(ctx *ring.Context) *ring.Poly {
	p := ctx.NewPoly(ring.Coefficient)
	p.CopyLvl(ctx.Level(), sk.Value)
	p.ChangeRepresentation(ring.Evaluation)
	return p
}

// embedQP builds sk's Evaluation-form representation over a combined QP
// context: the Q rows copy sk's existing residues, and the P rows re-derive
// the same ternary coefficient directly (cheap and exact, since a ternary
// value needs no CRT lift to be represented modulo a new prime).
func (sk *SecretKey) embedQP(ctxQP *ring.Context, qLen int) *ring.Poly {
	p := ctxQP.NewPoly(ring.Coefficient)
	for i := 0; i < qLen; i++ {
		copy(p.Coeffs[i], sk.Value.Coeffs[i])
	}
	for x := range p.Coeffs[0] {
		signed := ctxQP.Moduli[0].Center(sk.Value.Coeffs[0][x])
		for i := qLen; i < len(ctxQP.Moduli); i++ {
			p.Coeffs[i][x] = reduceTernary(signed, ctxQP.Moduli[i].Q)
		}
	}
	p.ChangeRepresentation(ring.Evaluation)
	return p
}

func reduceTernary(signed int64, q uint64) uint64 {
	switch {
	case signed == 0:
		return 0
	case signed > 0:
		return uint64(signed)
	default:
		return q - uint64(-signed)
	}
}
