package services

import (
	"sort"
	"strings"

	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driving"
	"github.com/citeline-ai/citeline/internal/logger"
)

// Ensure DomainClassifier implements the interface.
var _ driving.DomainService = (*DomainClassifier)(nil)

// GeneralDomain is the fallback label when no domain clears the threshold.
const GeneralDomain = "general"

// Scoring constants for keyword-weighted domain classification. The formula
// is deliberately lenient: classification is a routing hint, so falling back
// to general is cheap while a confident mislabel is not.
const (
	// scoreNormFloor is the minimum divisor when normalising match counts,
	// keeping small keyword sets from saturating the score.
	scoreNormFloor = 10.0

	// scoreNormFraction scales the divisor with the keyword set size.
	scoreNormFraction = 0.3

	// densityWindow is the word count per density unit.
	densityWindow = 100.0

	// densityCap bounds the density boost.
	densityCap = 2.0

	// densityWeight is how much the density boost inflates the base score.
	densityWeight = 0.2

	// thresholdFloor is the minimum acceptance threshold.
	thresholdFloor = 0.1

	// thresholdFraction scales the configured minimum confidence into the
	// acceptance threshold.
	thresholdFraction = 0.3
)

// defaultDomainKeywords maps each non-general domain to its keyword set.
// Matching is case-insensitive substring containment.
var defaultDomainKeywords = map[string][]string{
	"finance": {
		"loan", "mortgage", "investment", "portfolio", "risk", "compliance",
		"financial", "banking", "credit", "debt", "fico", "basel",
		"securities", "fund", "trading",
	},
	"legal": {
		"contract", "agreement", "liability", "clause", "jurisdiction",
		"lawsuit", "legal", "court", "attorney", "law", "litigation",
		"statute", "regulation", "breach", "defendant",
	},
	"medical": {
		"patient", "diagnosis", "treatment", "medication", "symptoms",
		"medical", "health", "doctor", "hospital", "clinical", "therapy",
		"prescription", "vital", "cardiac", "ecg", "oxygen",
	},
	"technical": {
		"api", "configuration", "deployment", "architecture", "protocol",
		"system", "software", "code", "programming", "technical",
		"server", "database", "network", "framework", "algorithm",
		".net", "dotnet", "csharp", "async", "await", "task",
		"dependency", "injection", "middleware", "hosting", "services",
		"azure", "functions", "orchestrator", "checkpointing", "retry",
		"workflow", "cosmos", "storage", "servicebus", "eventhub",
		"kubernetes", "docker", "container", "microservices",
		"terraform", "yaml", "pipeline", "ci/cd", "devops",
		"infrastructure", "provisioning", "automation", "helm", "kubectl",
		"distributed", "event-driven", "saga", "cqrs", "event-sourcing",
		"observability", "monitoring", "logging", "tracing", "metrics",
		"telemetry", "security", "authentication",
	},
	"education": {
		"student", "course", "curriculum", "academic", "education",
		"learning", "teaching", "university", "school", "grade",
		"assessment", "instruction", "pedagogy", "enrollment", "degree",
	},
}

// DomainClassifier assigns a confidence-scored domain label to free text
// using weighted keyword matching. The classifier is pure: identical input
// always yields an identical result.
type DomainClassifier struct {
	keywords      map[string][]string
	minConfidence float64
}

// NewDomainClassifier creates a classifier with the built-in keyword tables.
// minConfidence feeds the acceptance threshold; see Detect.
func NewDomainClassifier(minConfidence float64) *DomainClassifier {
	return &DomainClassifier{
		keywords:      defaultDomainKeywords,
		minConfidence: minConfidence,
	}
}

// Supported lists the recognised domain names, general last.
func (c *DomainClassifier) Supported() []string {
	names := make([]string, 0, len(c.keywords)+1)
	for name := range c.keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, GeneralDomain)
}

// IsSupported reports whether name is a recognised non-general domain or
// the general fallback.
func (c *DomainClassifier) IsSupported(name string) bool {
	if name == GeneralDomain {
		return true
	}
	_, ok := c.keywords[name]
	return ok
}

// Classify returns the best domain for the text with its confidence.
// A domain is accepted when its score clears
// max(thresholdFloor, minConfidence*thresholdFraction); otherwise the result
// is the general domain with confidence 1.0.
func (c *DomainClassifier) Classify(text string) domain.DomainScore {
	textLower := strings.ToLower(text)
	wordCount := len(strings.Fields(text))

	bestDomain := ""
	bestScore := 0.0
	for name, keywords := range c.keywords {
		score := scoreDomain(textLower, wordCount, keywords)
		// Tie-break by name so the result is deterministic across map
		// iteration orders.
		if score > bestScore || (score == bestScore && score > 0 && name < bestDomain) {
			bestDomain = name
			bestScore = score
		}
	}

	threshold := thresholdFloor
	if t := c.minConfidence * thresholdFraction; t > threshold {
		threshold = t
	}

	if bestDomain != "" && bestScore >= threshold {
		logger.Debug("Domain detected: %s (%.3f)", bestDomain, bestScore)
		return domain.DomainScore{Domain: bestDomain, Confidence: bestScore}
	}

	logger.Debug("No domain cleared threshold %.3f, falling back to general", threshold)
	return domain.DomainScore{Domain: GeneralDomain, Confidence: 1.0}
}

// Detect returns the classification plus per-domain keyword match counts.
func (c *DomainClassifier) Detect(text string) domain.DomainReport {
	score := c.Classify(text)

	textLower := strings.ToLower(text)
	counts := make(map[string]int, len(c.keywords)+1)
	for name, keywords := range c.keywords {
		counts[name] = countMatches(textLower, keywords)
	}
	counts[GeneralDomain] = 0

	return domain.DomainReport{
		Domain:      score.Domain,
		Confidence:  score.Confidence,
		MatchCounts: counts,
	}
}

// scoreDomain computes the keyword-weighted score for one domain.
// Zero matches score zero. Otherwise the match count is normalised against
// the keyword set size and boosted by match density for short texts.
func scoreDomain(textLower string, wordCount int, keywords []string) float64 {
	matches := countMatches(textLower, keywords)
	if matches == 0 {
		return 0
	}

	norm := float64(len(keywords)) * scoreNormFraction
	if norm < scoreNormFloor {
		norm = scoreNormFloor
	}
	base := float64(matches) / norm
	if base > 1.0 {
		base = 1.0
	}

	densityDenom := float64(wordCount) / densityWindow
	if densityDenom < 1 {
		densityDenom = 1
	}
	density := float64(matches) / densityDenom
	if density > densityCap {
		density = densityCap
	}

	return base * (1 + density*densityWeight)
}

// countMatches counts keywords contained in the lower-cased text.
func countMatches(textLower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(textLower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
