package bfv

import (
	"math/big"

	"github.com/nulltea/bfv/ring"
)

// Encoder implements the BFV plaintext encoding pipeline of spec.md §4.4:
// SIMD or coefficient encoding, with optional Δ-scaled or Evaluation-lifted
// caches, grounded on the teacher's bfv.Encoder.Encode/EncodeNew.
type Encoder struct {
	params *Parameters
}

// NewEncoder builds an Encoder bound to params.
func NewEncoder(params *Parameters) *Encoder {
	return &Encoder{params: params}
}

// Encode implements spec.md §4.4's encode(m[], params, enc).
func (e *Encoder) Encode(m []uint64, desc EncodingDescriptor) (*Plaintext, error) {
	params := e.params
	if uint64(len(m)) > params.N {
		return nil, newLengthMismatchError(len(m), int(params.N))
	}
	if desc.Level < 0 || desc.Level > params.Level() {
		return nil, newLevelOutOfRangeError(desc.Level, params.Level())
	}

	buf := make([]uint64, params.N)
	if desc.Kind == Simd {
		for j, v := range m {
			buf[params.perm[j]] = v % params.T
		}
		params.ctxT.Tables[0].Backward(buf, buf)
	} else {
		copy(buf, m)
		for i, v := range buf {
			buf[i] = v % params.T
		}
	}

	pt := &Plaintext{Value: buf}

	if desc.Cache == CacheMul || desc.Cache == CacheBoth {
		ctx := params.levels[desc.Level]
		mulPoly, err := ring.TryConvertFromUint64(ctx, buf)
		if err != nil {
			return nil, err
		}
		mulPoly.ChangeRepresentation(ring.Evaluation)
		pt.MulPoly = mulPoly
	}

	if desc.Cache == CacheAddSub || desc.Cache == CacheBoth {
		scaled, err := e.scaleM(buf, desc.Level)
		if err != nil {
			return nil, err
		}
		scaled.ChangeRepresentation(desc.Repr)
		pt.AddSubPoly = scaled
	}

	return pt, nil
}

// scaleM computes [round(Q_l*[m]_t/t)]_{Q_l} in RNS via the identity
// round(Q*m/t) == [Q*m]_t * [-t^-1]_Q (mod Q), with [Q*m]_t taken centered
// (spec.md §4.4): multiply m by
// [Q_l mod t] mod t, center to (-t/2, t/2], then for each q_i multiply by
// (-t^-1 mod q_i) and reduce.
func (e *Encoder) scaleM(m []uint64, level int) (*ring.Poly, error) {
	params := e.params
	ctx := params.levels[level]
	t := params.T
	halfT := int64(t / 2)

	tBig := new(big.Int).SetUint64(t)
	qModTBig := new(big.Int).SetUint64(params.qModT[level])
	prod := new(big.Int)

	out := ctx.NewPoly(ring.Coefficient)
	negTInv := params.negTInv[level]

	for j, v := range m {
		prod.SetUint64(v % t)
		prod.Mul(prod, qModTBig)
		prod.Mod(prod, tBig)
		signed := prod.Int64()
		if signed > halfT {
			signed -= int64(t)
		}

		for i, mod := range ctx.Moduli {
			residue := reduceSigned(signed, mod.Q)
			out.Coeffs[i][j] = mod.Mul(residue, negTInv[i])
		}
	}

	return out, nil
}

// reduceSigned maps a centered integer v into [0, q).
func reduceSigned(v int64, q uint64) uint64 {
	if v >= 0 {
		return uint64(v) % q
	}
	r := uint64(-v) % q
	if r == 0 {
		return 0
	}
	return q - r
}

// Decode implements spec.md §4.4's decode: read the Coefficient-form
// polynomial mod t, apply the plaintext forward NTT if Simd, then undo the
// slot permutation π.
func (e *Encoder) Decode(pt *Plaintext, desc EncodingDescriptor) ([]uint64, error) {
	params := e.params
	if uint64(len(pt.Value)) != params.N {
		return nil, newLengthMismatchError(len(pt.Value), int(params.N))
	}

	buf := append([]uint64(nil), pt.Value...)
	if desc.Kind != Simd {
		return buf, nil
	}

	params.ctxT.Tables[0].Forward(buf, buf)

	out := make([]uint64, params.N)
	for j := uint64(0); j < params.N; j++ {
		out[j] = buf[params.perm[j]]
	}
	return out, nil
}
