// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding, vector storage, reranking,
// generation, prompt templates, and the document ledger.
package driven
