package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Contains(t, bar.View(), "Ready")
	assert.Contains(t, bar.View(), "enter: ask")
}

func TestBar_WorkingShowsPipelineStep(t *testing.T) {
	tests := []struct {
		state domain.PipelineState
		want  string
	}{
		{domain.PipelineIdle, "Checking index..."},
		{domain.PipelineRetrieving, "Searching documents..."},
		{domain.PipelineSynthesizing, "Writing answer..."},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(StateWorking)
			bar.SetPipelineState(tt.state)

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_LeavingWorkingResetsPipeline(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateWorking)
	bar.SetPipelineState(domain.PipelineSynthesizing)

	bar.SetState(StateReady)

	assert.Equal(t, domain.PipelineIdle, bar.PipelineState())
}

func TestBar_Error(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetState(StateError)
	bar.SetMessage("synthesis failed: LLM service unavailable")

	assert.Contains(t, bar.View(), "Error: synthesis failed")
}

func TestBar_IndexSummary(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	bar.SetIndexStatus(domain.IndexStatus{Chunks: 12, Backend: domain.StoreBackendSQLite})
	assert.Contains(t, bar.View(), "12 chunks · sqlite")
	assert.NotContains(t, bar.View(), "stale")

	bar.SetIndexStatus(domain.IndexStatus{Chunks: 12, Backend: domain.StoreBackendSQLite, Stale: true})
	assert.Contains(t, bar.View(), "stale")
}

func TestBar_ToggleHelp(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.NotContains(t, bar.View(), "ctrl+r")
	bar.ToggleHelp()
	assert.True(t, bar.ShowingHelp())
	assert.Contains(t, bar.View(), "ctrl+r: reindex")
}
