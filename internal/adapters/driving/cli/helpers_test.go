package cli

import (
	"context"

	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous ones.
func setupTestServices() func() {
	oldAnswer, oldCorpus, oldDomain := answerService, corpusService, domainService

	answerService = &mockAnswerService{
		result: &domain.AskResult{
			Route:  domain.RouteLocal,
			Answer: "Failover starts with DNS cutover [1].",
			ContextMap: []domain.ContextMapEntry{
				{Index: 1, DocumentID: "dr_runbook.md", ChunkID: "chunk-a", Score: 0.91},
			},
			ModelUsed:        "phi3.5:3.8b-mini-instruct-q4_0",
			DetectedDomain:   "technical",
			DomainConfidence: 0.42,
			TaskType:         domain.TaskGeneral,
		},
		health: &domain.Health{
			OK:           true,
			Collection:   "tech_knowledge_base",
			EmbedModel:   "bge-m3",
			DefaultModel: "phi3.5:3.8b-mini-instruct-q4_0",
			Specialised: map[string]string{
				"general_chat": "llama3.1:8b",
			},
			AvailableModels:  []string{"llama3.1:8b"},
			SupportedDomains: []string{"general", "technical"},
		},
	}
	corpusService = &mockCorpusService{
		passages: []domain.Passage{
			{ID: "chunk-a", DocumentID: "dr_runbook.md", ChunkIndex: 1, Text: "Phase one is DNS cutover.", Score: 0.91},
		},
		ingested: 3,
		seeded:   3,
		records: []domain.DocumentRecord{
			{DocumentID: "dr_runbook.md", Chunks: 3, Domain: "technical", Confidence: 0.42, IngestedAt: 1756600000},
		},
	}
	domainService = &mockDomainService{
		report: domain.DomainReport{
			Domain:      "technical",
			Confidence:  0.42,
			MatchCounts: map[string]int{"general": 0, "technical": 5},
		},
	}

	return func() {
		answerService, corpusService, domainService = oldAnswer, oldCorpus, oldDomain
	}
}

type mockAnswerService struct {
	result *domain.AskResult
	health *domain.Health
	err    error

	lastQuery string
	lastTask  domain.TaskType
}

func (m *mockAnswerService) Ask(_ context.Context, query string, taskType domain.TaskType) (*domain.AskResult, error) {
	m.lastQuery = query
	m.lastTask = taskType
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAnswerService) Health(context.Context) (*domain.Health, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.health, nil
}

type mockCorpusService struct {
	passages []domain.Passage
	ingested int
	seeded   int
	records  []domain.DocumentRecord
	err      error

	lastDocID string
	lastText  string
	lastOpts  driving.IngestOptions
}

func (m *mockCorpusService) EnsureReady(context.Context) error {
	return m.err
}

func (m *mockCorpusService) Ingest(_ context.Context, documentID, text string, opts driving.IngestOptions) (int, error) {
	m.lastDocID = documentID
	m.lastText = text
	m.lastOpts = opts
	if m.err != nil {
		return 0, m.err
	}
	return m.ingested, nil
}

func (m *mockCorpusService) Search(context.Context, string, int) ([]domain.Passage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.passages, nil
}

func (m *mockCorpusService) Seed(context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.seeded, nil
}

func (m *mockCorpusService) Documents(context.Context) ([]domain.DocumentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type mockDomainService struct {
	report domain.DomainReport
}

func (m *mockDomainService) Detect(string) domain.DomainReport {
	return m.report
}

func (m *mockDomainService) Supported() []string {
	return []string{"general", "technical"}
}
