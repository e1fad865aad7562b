// Package services implements the core business logic of the answering
// engine: the corpus gateway, reranking, domain classification, model
// routing, prompt construction with citation validation, and the answer
// orchestrator. Services depend only on domain types and driven ports;
// infrastructure details live in internal/adapters.
package services
