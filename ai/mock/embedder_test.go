package mock

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/passage/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ai.Embedder = (*MockEmbedder)(nil)
var _ ai.AIProvider = (*MockProvider)(nil)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	v1, err := m.EmbedText(ctx, "deep sleep")
	require.NoError(t, err)
	v2, err := m.EmbedText(ctx, "deep sleep")
	require.NoError(t, err)
	v3, err := m.EmbedText(ctx, "rem sleep")
	require.NoError(t, err)

	assert.Len(t, v1, DefaultDimension)
	assert.Equal(t, v1, v2)
	assert.NotEqual(t, v1, v3)
	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, []string{"deep sleep", "deep sleep", "rem sleep"}, m.Texts())
}

func TestVector_IsUnitLength(t *testing.T) {
	v := Vector("anything", 64)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder_FailOnCall(t *testing.T) {
	m := NewMockEmbedder().FailOnCall(2)
	ctx := context.Background()

	_, err := m.EmbedText(ctx, "a")
	assert.NoError(t, err)
	_, err = m.EmbedText(ctx, "b")
	assert.ErrorIs(t, err, ErrInjected)
	_, err = m.EmbedText(ctx, "c")
	assert.NoError(t, err)
}

func TestMockEmbedder_CustomFunc(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 2, 3}, nil
	}

	v, err := m.EmbedText(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, v)
}

func TestMockEmbedder_EmbedTexts(t *testing.T) {
	m := NewMockEmbedder()
	m.Dimension = 8

	vs, err := m.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Len(t, vs[0], 8)
	assert.Equal(t, Vector("b", 8), vs[1])
	assert.Equal(t, 1, m.CallCount())
}

func TestMockEmbedder_Reset(t *testing.T) {
	m := NewMockEmbedder().FailOnCall(1)
	m.Reset()

	_, err := m.EmbedText(context.Background(), "a")
	assert.NoError(t, err)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
}
