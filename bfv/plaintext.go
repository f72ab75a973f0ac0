package bfv

import "github.com/nulltea/bfv/ring"

// EncodingKind selects the BFV encoding: Simd packs N independent slots via
// the plaintext-modulus NTT permutation; Poly treats m directly as the
// polynomial's coefficients (spec.md §3 "Encoding descriptor").
type EncodingKind int

const (
	Simd EncodingKind = iota
	Poly
)

// CacheKind selects which scaled polynomial forms a Plaintext caches
// alongside its raw value (spec.md §3, §4.4).
type CacheKind int

const (
	// CacheNone caches nothing; used on the encryption path.
	CacheNone CacheKind = iota
	// CacheMul caches the Evaluation-form lift consumed by ciphertext
	// multiplication.
	CacheMul
	// CacheAddSub caches the Δ-scaled polynomial used for plaintext-ciphertext
	// addition/subtraction.
	CacheAddSub
	// CacheBoth caches both of the above.
	CacheBoth
)

// EncodingDescriptor fixes how Encoder.Encode/Decode interpret a message
// vector (spec.md §3).
type EncodingDescriptor struct {
	Kind  EncodingKind
	Level int
	Cache CacheKind
	// Repr is the representation the AddSub/Both cache is converted into.
	// Ignored when Cache is CacheNone or CacheMul.
	Repr ring.Representation
}

// Plaintext holds the reduced message vector together with whichever scaled
// polynomial forms its EncodingDescriptor requested (spec.md §3).
type Plaintext struct {
	// Value is m reduced mod t; for Simd it is also permuted and passed
	// through the inverse plaintext NTT.
	Value []uint64

	// MulPoly is the Evaluation-form lift in the level's ciphertext context,
	// present only when Cache was CacheMul or CacheBoth.
	MulPoly *ring.Poly

	// AddSubPoly is the Δ-scaled polynomial, converted to the requested
	// representation, present only when Cache was CacheAddSub or CacheBoth.
	AddSubPoly *ring.Poly
}
