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

// Package ai provides the embedding-service abstraction used by passage.
//
// The ingestion pipeline and the searcher depend on the Embedder interface
// rather than on a concrete client, so tests run against deterministic mocks
// and production can point at OpenAI or any OpenAI-compatible server
// (Ollama, LocalAI, vLLM).
//
// # Implementation Packages
//
//   - ai/openai: langchaingo client for OpenAI-compatible APIs
//   - ai/mock: deterministic, failure-injectable test doubles
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types. Test constructors (mock.NewMockEmbedder) return concrete
// types so tests can inject behavior and read call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithAPIToken(os.Getenv("OPENAI_API_KEY")))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Why does sleep matter?")
package ai
