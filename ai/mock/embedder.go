package mock

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"sync"
)

// DefaultDimension is the length of vectors produced by MockEmbedder.
const DefaultDimension = 384

// ErrInjected is returned by MockEmbedder on calls selected with FailOnCall.
var ErrInjected = errors.New("mock embedder: injected failure")

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension is the vector length of the default behavior.
	Dimension int

	mu        sync.Mutex
	callCount int
	texts     []string
	failOn    map[int]bool
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{Dimension: DefaultDimension}
}

// FailOnCall makes the given 1-based calls return ErrInjected.
func (m *MockEmbedder) FailOnCall(calls ...int) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == nil {
		m.failOn = make(map[int]bool)
	}
	for _, c := range calls {
		m.failOn[c] = true
	}
	return m
}

// record counts a call and reports whether it should fail.
func (m *MockEmbedder) record(texts ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.texts = append(m.texts, texts...)
	return m.failOn[m.callCount]
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.record(text) {
		return nil, ErrInjected
	}

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return Vector(text, m.dimension()), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.record(texts...) {
		return nil, ErrInjected
	}

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = Vector(text, m.dimension())
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Texts returns every text passed to the embedder, in call order.
func (m *MockEmbedder) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Reset clears the call history, injected failures and custom functions.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.texts = nil
	m.failOn = nil
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

func (m *MockEmbedder) dimension() int {
	if m.Dimension <= 0 {
		return DefaultDimension
	}
	return m.Dimension
}

// Vector creates a deterministic unit vector from text.
// The same text always produces the same vector.
func Vector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := range vector {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
