package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

type mockAnswerService struct {
	result    domain.AnswerResult
	err       error
	questions []string
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (domain.AnswerResult, error) {
	m.questions = append(m.questions, question)
	return m.result, m.err
}

type mockIndexService struct {
	report      domain.RebuildReport
	rebuilt     bool
	status      domain.IndexStatus
	err         error
	rebuilds    int
	ensureCalls int
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

type mockRefreshService struct {
	events []domain.RefreshEvent
	err    error
	fn     func(domain.RefreshEvent)
}

func (m *mockRefreshService) Run(_ context.Context) error {
	for _, e := range m.events {
		if m.fn != nil {
			m.fn(e)
		}
	}
	return m.err
}

func (m *mockRefreshService) OnRefresh(fn func(domain.RefreshEvent)) {
	m.fn = fn
}

type mockSettingsService struct {
	settings domain.AppSettings
	getErr   error
	setErr   error
	set      map[string]string
	embedErr error
	llmErr   error
	keys     []string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		set:      make(map[string]string),
		keys:     []string{"chunking.size", "llm.model"},
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return m.keys
}

func (m *mockSettingsService) Validate() error {
	return m.settings.Validate()
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.embedErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.llmErr
}

var _ driving.SettingsService = (*mockSettingsService)(nil)

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	answer   *mockAnswerService
	index    *mockIndexService
	refresh  *mockRefreshService
	settings *mockSettingsService
}

// setupTestServices installs mocks for every service and restores the
// previous values and flag state when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	oldAnswer, oldIndex, oldRetrieval := answerService, indexService, retrievalService
	oldPipeline, oldRefresh, oldSettings := pipelineObserver, refreshService, settingsService
	oldWiring, oldClose := wiring, closeService

	ts := &testServices{
		answer:   &mockAnswerService{},
		index:    &mockIndexService{},
		refresh:  &mockRefreshService{},
		settings: newMockSettingsService(),
	}
	answerService = ts.answer
	indexService = ts.index
	refreshService = ts.refresh
	settingsService = ts.settings

	t.Cleanup(func() {
		answerService, indexService, retrievalService = oldAnswer, oldIndex, oldRetrieval
		pipelineObserver, refreshService, settingsService = oldPipeline, oldRefresh, oldSettings
		wiring, closeService = oldWiring, oldClose
		askJSON, ticketJSON, indexIfStale, statusJSON = false, false, false, false
		ticket = domain.Ticket{}
	})
	return ts
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
