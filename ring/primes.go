package ring

import "math/big"

// IsPrime reports whether q is prime, using Baillie-PSW via math/big.
func IsPrime(q uint64) bool {
	return new(big.Int).SetUint64(q).ProbablyPrime(20)
}

// NTTFriendly reports whether q is prime and q = 1 (mod 2N), the condition
// required for a negacyclic NTT of degree N (spec.md §4.1).
func NTTFriendly(q, N uint64) bool {
	return IsPrime(q) && q&((2*N)-1) == 1
}

// GenerateNTTFriendlyPrimes searches downward from the largest bitSize-bit
// value for count distinct primes q with q = 1 (mod 2N), skipping any value
// already present in exclude. It mirrors the teacher's
// ring.GenerateNTTPrimes/IsPrime search in ring/ring_context.go and
// ring/ring_test.go, generalized to accept an exclusion set (used to keep
// the plaintext modulus t and the auxiliary chain P disjoint from Q).
func GenerateNTTFriendlyPrimes(N uint64, bitSize int, count int, exclude []uint64) ([]uint64, error) {
	if bitSize < 2 || bitSize > 62 {
		return nil, newError(ErrModulusGenerationExhausted, "ring: invalid prime bit size %d", bitSize)
	}

	excluded := make(map[uint64]bool, len(exclude))
	for _, q := range exclude {
		excluded[q] = true
	}

	twoN := 2 * N
	upper := (uint64(1) << uint(bitSize)) - 1
	// Largest candidate congruent to 1 mod 2N that is <= upper.
	cand := upper - (upper % twoN) + 1
	if cand > upper {
		cand -= twoN
	}
	lower := uint64(1) << uint(bitSize-1)

	primes := make([]uint64, 0, count)
	for cand >= lower {
		if !excluded[cand] && IsPrime(cand) {
			primes = append(primes, cand)
			excluded[cand] = true
			if len(primes) == count {
				return primes, nil
			}
		}
		if cand < twoN {
			break
		}
		cand -= twoN
	}

	return nil, newModulusGenerationExhaustedError(bitSize)
}

// primitiveRoot returns a generator of the multiplicative group (Z/qZ)^*,
// required to seed the NTT twiddle-factor tables.
func primitiveRoot(q uint64) uint64 {
	qm1 := q - 1
	factors := primeFactors(qm1)

	for g := uint64(2); ; g++ {
		isGenerator := true
		for _, f := range factors {
			if ModExp(g, qm1/f, q) == 1 {
				isGenerator = false
				break
			}
		}
		if isGenerator {
			return g
		}
	}
}

// primeFactors returns the distinct prime factors of n.
func primeFactors(n uint64) []uint64 {
	var factors []uint64
	m := n
	for p := uint64(2); p*p <= m; p++ {
		if m%p == 0 {
			factors = append(factors, p)
			for m%p == 0 {
				m /= p
			}
		}
	}
	if m > 1 {
		factors = append(factors, m)
	}
	return factors
}
