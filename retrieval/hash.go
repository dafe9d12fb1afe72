package retrieval

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// DefaultHashDimension is the vector size of HashEmbedder.
const DefaultHashDimension = 256

// HashEmbedder embeds text by feature hashing lower-cased word tokens into
// a fixed-size, L2-normalized vector. It needs no model server, so texts
// that share words score as similar and nothing more.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder returns a HashEmbedder. dim <= 0 selects
// DefaultHashDimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &HashEmbedder{dim: dim}
}

// Embed implements Embedder.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, h.dim)
	for _, tok := range tokenize(text) {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(tok))
		sum := hasher.Sum32()

		sign := 1.0
		if sum&(1<<31) != 0 {
			sign = -1.0
		}
		vec[int(sum%uint32(h.dim))] += sign
	}

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}

	out := make([]float32, h.dim)
	for i, x := range vec {
		out[i] = float32(x)
	}
	return out, nil
}

// Dimension returns the vector size.
func (h *HashEmbedder) Dimension() int {
	return h.dim
}

// Close implements Embedder.
func (h *HashEmbedder) Close() error {
	return nil
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "be": {}, "by": {}, "for": {},
	"he": {}, "his": {}, "in": {}, "is": {}, "it": {}, "me": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "who": {}, "with": {}, "you": {}, "your": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, skip := stopWords[f]; !skip {
			out = append(out, f)
		}
	}
	return out
}
