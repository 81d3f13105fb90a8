package mcp

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result   domain.AnswerResult
	err      error
	question string
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (domain.AnswerResult, error) {
	m.question = question
	return m.result, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status      domain.IndexStatus
	report      domain.RebuildReport
	rebuilt     bool
	err         error
	ensureCalls int
	rebuilds    int
}

func (m *mockIndexService) Rebuild(_ context.Context) (domain.RebuildReport, error) {
	m.rebuilds++
	return m.report, m.err
}

func (m *mockIndexService) EnsureFresh(_ context.Context) (bool, error) {
	m.ensureCalls++
	return m.rebuilt, m.err
}

func (m *mockIndexService) Status(_ context.Context) (domain.IndexStatus, error) {
	return m.status, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	passages []domain.RetrievedPassage
	err      error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string) ([]domain.RetrievedPassage, error) {
	return m.passages, m.err
}
