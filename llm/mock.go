package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// MockProvider is a deterministic stand-in for both model interfaces. Vectors
// are derived from token hashes so that identical texts embed identically and
// related texts land near each other.
type MockProvider struct{}

const mockDim = 64

func (m *MockProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, mockDim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%mockDim]++
	}
	return vec, nil
}

func (m *MockProvider) Generate(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("[mock] answered from %d prompt characters", len(prompt)), nil
}
