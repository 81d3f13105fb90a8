package domain

// PipelineState is a step of the answer pipeline.
type PipelineState int

// Pipeline states. A run moves Idle -> Retrieving -> Synthesizing -> Done,
// or to Failed from any step.
const (
	PipelineIdle PipelineState = iota
	PipelineRetrieving
	PipelineSynthesizing
	PipelineDone
	PipelineFailed
)

// String returns the string representation.
func (s PipelineState) String() string {
	switch s {
	case PipelineIdle:
		return "idle"
	case PipelineRetrieving:
		return "retrieving"
	case PipelineSynthesizing:
		return "synthesizing"
	case PipelineDone:
		return "done"
	case PipelineFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for Done and Failed.
func (s PipelineState) IsTerminal() bool {
	return s == PipelineDone || s == PipelineFailed
}

// CanTransition reports whether the pipeline may move from s to next.
func (s PipelineState) CanTransition(next PipelineState) bool {
	if next == PipelineFailed {
		return !s.IsTerminal()
	}
	switch s {
	case PipelineIdle:
		return next == PipelineRetrieving
	case PipelineRetrieving:
		return next == PipelineSynthesizing
	case PipelineSynthesizing:
		return next == PipelineDone
	default:
		return false
	}
}
