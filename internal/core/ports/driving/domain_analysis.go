package driving

import "github.com/citeline-ai/citeline/internal/core/domain"

// DomainService classifies free text into coarse subject domains.
type DomainService interface {
	// Detect returns the best domain with its confidence and the raw
	// keyword match counts per domain.
	Detect(text string) domain.DomainReport

	// Supported lists the recognised domain names, including the
	// "general" fallback.
	Supported() []string
}
