package index

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"math/rand"
	"strconv"
)

// Embed computes a deterministic pseudo-embedding for the text: the SHA-256
// digest seeds a PRNG whose uniform draws in [-1, 1) form the vector, which
// is then L2-normalized. The result is a pure function of the text, NOT a
// semantic embedding; lexically similar strings may land arbitrarily far
// apart. Retrieval behavior and persisted vectors depend on this exact
// construction, so changing it means a full re-index.
func Embed(text string, dim int) []float32 {
	digest := sha256.Sum256([]byte(text))
	seedHex := hex.EncodeToString(digest[:])[:8]
	seed, _ := strconv.ParseUint(seedHex, 16, 64)

	rng := rand.New(rand.NewSource(int64(seed)))

	vec := make([]float64, dim)
	var norm float64
	for i := range vec {
		vec[i] = rng.Float64()*2 - 1
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)

	out := make([]float32, dim)
	if norm == 0 {
		return out
	}
	for i := range vec {
		out[i] = float32(vec[i] / norm)
	}
	return out
}
