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

package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/tokenizer"
)

// Corpus is the content of a corpus file.
type Corpus struct {
	Tokens int      `json:"tokens"`
	Essays []*Essay `json:"essays"`
}

// Essay is a document together with the chunks produced from it.
type Essay struct {
	core.Document
	Chunks []*core.Chunk `json:"chunks"`
}

// New creates a corpus of the given documents with no chunks.
func New(docs ...*core.Document) *Corpus {
	c := &Corpus{Essays: make([]*Essay, 0, len(docs))}
	for _, doc := range docs {
		c.Essays = append(c.Essays, &Essay{Document: *doc, Chunks: []*core.Chunk{}})
	}
	c.recount()
	return c
}

// Load reads the corpus file at path.
// Essays with content but no token count are counted with tok; a nil tok
// leaves them as they are.
func Load(path string, tok tokenizer.Tokenizer) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCorpus, path, err)
	}

	for i, essay := range c.Essays {
		if essay == nil {
			return nil, fmt.Errorf("%w: essay %d is null", ErrInvalidCorpus, i)
		}
		if err := core.ValidateDocument(&essay.Document); err != nil {
			return nil, fmt.Errorf("%w: essay %d: %w", ErrInvalidCorpus, i, err)
		}
		if essay.Tokens == 0 && tok != nil && essay.Content != "" {
			essay.Tokens = tok.Count(strings.TrimSpace(essay.Content))
		}
		if essay.Chunks == nil {
			essay.Chunks = []*core.Chunk{}
		}
	}
	c.recount()

	return &c, nil
}

// Save writes c to path, replacing any existing file.
// The file is written to a temporary sibling first and renamed into place.
func Save(path string, c *Corpus) error {
	if c == nil {
		return ErrCorpusRequired
	}
	c.recount()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Documents returns the essays as documents, in file order.
func (c *Corpus) Documents() []*core.Document {
	docs := make([]*core.Document, len(c.Essays))
	for i, essay := range c.Essays {
		docs[i] = &essay.Document
	}
	return docs
}

// Chunks returns the chunks of every essay, flattened in file order.
func (c *Corpus) Chunks() []*core.Chunk {
	var chunks []*core.Chunk
	for _, essay := range c.Essays {
		chunks = append(chunks, essay.Chunks...)
	}
	return chunks
}

// ChunkCount returns the number of chunks across all essays.
func (c *Corpus) ChunkCount() int {
	n := 0
	for _, essay := range c.Essays {
		n += len(essay.Chunks)
	}
	return n
}

func (c *Corpus) recount() {
	total := 0
	for _, essay := range c.Essays {
		total += essay.Tokens
	}
	c.Tokens = total
}
