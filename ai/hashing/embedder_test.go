package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	e := NewEmbedder(0)
	for _, text := range []string{"", "   ", "!!! --- ///", "日本語"} {
		v := e.Embed(text)
		require.Len(t, v, DefaultDim)
		assert.Zero(t, norm(v), "text %q", text)
	}
}

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder(128)
	a := e.Embed("Sparse attention for long documents")
	b := e.Embed("Sparse attention for long documents")
	assert.Equal(t, a, b)
}

func TestEmbed_UnitNorm(t *testing.T) {
	e := NewEmbedder(64)
	v := e.Embed("reinforcement learning from human feedback")
	assert.Len(t, v, 64)
	assert.InDelta(t, 1.0, norm(v), 1e-6)
}

func TestEmbed_CaseAndPunctuationInsensitive(t *testing.T) {
	e := NewEmbedder(DefaultDim)
	assert.Equal(t, e.Embed("machine learning"), e.Embed("Machine, LEARNING!"))
}

func TestEmbedder_Interface(t *testing.T) {
	e := NewEmbedder(32)
	assert.Equal(t, "hash-emb-32", e.Model())
	assert.Equal(t, 32, e.Dim())

	vs, err := e.EmbedTexts(context.Background(), []string{"a b", "c"})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, e.Embed("c"), vs[1])

	v, err := e.EmbedText(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, vs[0], v)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"(graph) neural-nets/", []string{"graph", "neural-nets"}},
		{"café latte", []string{"latte"}},
		{"  -- ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestCosine(t *testing.T) {
	e := NewEmbedder(DefaultDim)
	a := e.Embed("diffusion models for protein design")
	zero := make([]float32, DefaultDim)

	sim, err := Cosine(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)

	sim, err = Cosine(zero, a)
	require.NoError(t, err)
	assert.Zero(t, sim)

	sim, err = Cosine(a, zero)
	require.NoError(t, err)
	assert.Zero(t, sim)

	_, err = Cosine(a, a[:10])
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCosine_Range(t *testing.T) {
	sim, err := Cosine([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.Equal(t, -1.0, sim)

	sim, err = Cosine([]float32{1, 0}, []float32{0, 3})
	require.NoError(t, err)
	assert.Zero(t, sim)
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	z := []float32{0, 0}
	Normalize(z)
	assert.Equal(t, []float32{0, 0}, z)
}
