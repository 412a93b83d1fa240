// Package tokenizer provides token counting for chunk budgets.
//
// The chunker and anything that reports token counts must share a single
// Tokenizer so that a "200 token" budget means the same thing everywhere.
//
//   - Tiktoken: BPE counts using OpenAI encodings (r50k_base by default)
//   - Words: whitespace-separated word counts, for tests and offline use
package tokenizer
