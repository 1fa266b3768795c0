// Package hashing implements a deterministic bag-of-words embedder and the
// vector math used by retrieval and scoring.
package hashing

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/talentscout/ai"
)

// DefaultDim is the embedding dimension used when none is configured.
const DefaultDim = 512

// punctuation is trimmed from both ends of every token.
const punctuation = ".,:;()[]{}\"'\n\t !?-_/"

// Embedder hashes tokens into a fixed-dimension signed count vector and
// L2-normalizes it. The same text always yields the same vector.
type Embedder struct {
	dim int
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates an Embedder. A non-positive dim selects DefaultDim.
func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Embedder{dim: dim}
}

// Dim returns the vector length.
func (e *Embedder) Dim() int {
	return e.dim
}

// Model returns the model tag stored next to hashing vectors.
func (e *Embedder) Model() string {
	return fmt.Sprintf("hash-emb-%d", e.dim)
}

// Embed returns the normalized vector of text. Text without tokens yields
// the zero vector.
func (e *Embedder) Embed(text string) []float32 {
	vec := make([]float32, e.dim)
	for _, tok := range Tokenize(text) {
		h := tokenHash(tok)
		i := h % uint64(e.dim)
		if (h>>1)&1 == 1 {
			vec[i]--
		} else {
			vec[i]++
		}
	}
	Normalize(vec)
	return vec
}

// EmbedText implements ai.Embedder.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.Embed(text), nil
}

// EmbedTexts implements ai.Embedder.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.Embed(t)
	}
	return out, nil
}

// Tokenize splits on whitespace, keeps ASCII tokens, trims punctuation and
// lowercases. Tokens that are empty after trimming are dropped.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if !isASCII(f) {
			continue
		}
		tok := strings.ToLower(strings.Trim(f, punctuation))
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}

// tokenHash is the first 8 bytes of the BLAKE2b digest, little endian.
func tokenHash(tok string) uint64 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(tok))
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// Normalize scales v to unit length in place. The zero vector is left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
}
