// Package sqlite provides a storage.ChunkRepository backed by a single
// SQLite table, using the pure-Go modernc.org/sqlite driver.
//
// Embeddings are stored as little-endian float32 blobs. Similarity search
// scans the table and ranks in memory, which is adequate for corpora of a
// few thousand chunks.
package sqlite
