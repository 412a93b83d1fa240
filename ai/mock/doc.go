// Package mock provides test doubles for the ai interfaces.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedder().FailOnCall(3)
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: deterministic unit vectors derived from a text hash
//   - MockProvider: wraps a MockEmbedder and records Close
package mock
