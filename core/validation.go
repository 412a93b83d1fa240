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


package core

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - URL must not be empty (it is the provenance key)
//   - Tokens must not be negative
//
// NOT validated:
//   - Date (an unparsed date is stored as empty)
//   - Content (an empty document still yields one empty chunk)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyURL)
	}

	if doc.Tokens < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrNegativeTokens)
	}

	return nil
}

// ValidateChunk validates a Chunk before it is embedded.
//
// Validation rules:
//   - Content must contain non-whitespace text
//   - ContentTokens must not be negative
//
// NOT validated (populated by the ingestor):
//   - Embedding
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if strings.TrimSpace(chunk.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.ContentTokens < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeTokens)
	}

	return nil
}
