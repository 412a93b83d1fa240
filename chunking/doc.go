// Package chunking splits documents into token-bounded passages for embedding.
//
// A Chunker groups the sentences of a document into chunks that fit a token
// budget, then folds undersized trailing fragments into their predecessor so
// short dangling clauses never become standalone retrieval units.
//
// Sentences are found with a naive ". " split. Abbreviations and decimals
// split early; this is accepted behavior.
//
// # Usage
//
//	c, err := chunking.New(tokenizer.Words{}, chunking.WithChunkSize(200))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	chunks := c.Chunk(doc)
//
// Chunk never fails. If segmenting or merging panics, the whole trimmed
// content is returned as one chunk.
package chunking
