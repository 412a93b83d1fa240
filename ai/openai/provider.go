// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"log/slog"

	"github.com/poiesic/passage/ai"
)

// Provider hands the ingestor and searcher one shared embedder bound to a
// single host and model, so stored and query vectors are comparable.
type Provider struct {
	host     string
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider normalizes and validates config, then builds the embedder.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Debug("embedding provider ready", "host", config.EmbeddingHost, "model", embedder.model)

	return &Provider{
		host:     config.EmbeddingHost,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Embedder returns the shared embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close holds no connections open; it only logs.
func (p *Provider) Close() error {
	p.logger.Debug("closing embedding provider", "host", p.host)
	return nil
}
