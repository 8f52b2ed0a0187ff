// internal/stream/reducer.go
package stream

import (
	"encoding/json"
	"fmt"
)

// LiveState is the partial view of an in-flight exploration, built up by
// folding channel events in arrival order. It is created empty when an
// exploration starts, replaced wholesale by the authoritative result when
// the start request completes, and discarded on reset.
type LiveState struct {
	Stage         string
	Percent       float64
	StatusMessage string

	Hypotheses []Hypothesis
	// TestResults keys by hypothesis id; per-hypothesis order is arrival
	// order.
	TestResults map[string][]TestResult
	// CurrentTestingID is the hypothesis under test, or "" when none.
	CurrentTestingID string
}

// NewLiveState returns an empty live state.
func NewLiveState() LiveState {
	return LiveState{TestResults: make(map[string][]TestResult)}
}

// FromResult converts an authoritative exploration result into the state
// shape the view renders, superseding whatever the channel delivered.
func FromResult(r *Result) LiveState {
	s := NewLiveState()
	s.Hypotheses = append(s.Hypotheses, r.Hypotheses...)
	for id, results := range r.TestResults {
		s.TestResults[id] = append([]TestResult(nil), results...)
	}
	return s
}

// Reduce applies one decoded channel message to the state and returns the
// updated copy. The input state is not mutated: slices and the results map
// are copied before any change, so callers can hold old snapshots safely.
// An unknown event tag or an unparsable payload returns the state unchanged
// along with the reason, which the caller records for diagnostics.
func Reduce(s LiveState, msg Message) (LiveState, error) {
	switch msg.Event {
	case EventProgress:
		var data ProgressData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return s, fmt.Errorf("progress payload: %w", err)
		}
		// Last write wins; no merge with prior progress.
		s.Stage = data.Stage
		s.Percent = data.Percent
		s.StatusMessage = data.Message
		return s, nil

	case EventLog:
		// Diagnostic only; the caller appends it to the log. Hypotheses and
		// test results are untouched.
		var data LogData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return s, fmt.Errorf("log payload: %w", err)
		}
		return s, nil

	case EventHypotheses:
		var data HypothesesData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return s, fmt.Errorf("hypotheses payload: %w", err)
		}
		// Replace wholesale, never merge.
		s.Hypotheses = append([]Hypothesis(nil), data.Hypotheses...)
		return s, nil

	case EventTestingStart:
		var data TestingStartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return s, fmt.Errorf("testing start payload: %w", err)
		}
		s.CurrentTestingID = data.HypothesisID
		return s, nil

	case EventTestResult:
		var data TestResultData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return s, fmt.Errorf("test result payload: %w", err)
		}
		results := make(map[string][]TestResult, len(s.TestResults)+1)
		for id, list := range s.TestResults {
			results[id] = list
		}
		results[data.HypothesisID] = append(append([]TestResult(nil),
			results[data.HypothesisID]...), data.TestResult)
		s.TestResults = results
		return s, nil

	case EventTestingComplete:
		s.CurrentTestingID = ""
		return s, nil

	default:
		return s, fmt.Errorf("unknown event %q", msg.Event)
	}
}
