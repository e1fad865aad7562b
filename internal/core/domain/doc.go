// Package domain defines the entities and invariants of the citation-enforced
// answering engine: passages, context maps, domain scores, model selections,
// ask results, and the sentinel errors shared across layers.
//
// The package has no dependencies on other internal packages. Services and
// adapters depend on it, never the other way around.
package domain
