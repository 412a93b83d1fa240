// Package ingestion embeds chunks and populates the chunk store.
//
// For every chunk, in order, the Ingestor:
//   - checks whether a record with exactly the same content is stored (SKIPPED)
//   - asks the embedding service for a vector
//   - stores a record with the vector (STORED)
//
// Any failure marks that chunk FAILED and the run continues with the next
// chunk. Nothing is retried: re-running the same input is safe because the
// existence check skips everything already stored, so a re-run only performs
// the work that failed before.
//
// A Pacer is waited on between consecutive chunks to bound the request rate
// against the embedding service. Pacing state lives on the Ingestor, so one
// Ingestor fed a document at a time paces across documents too.
//
//	ing, err := ingestion.NewIngestor(repo, provider.Embedder(),
//	    ingestion.WithDelay(300*time.Millisecond))
//	outcomes, err := ing.Ingest(ctx, chunks)
//	summary := ingestion.Summarize(outcomes)
package ingestion
