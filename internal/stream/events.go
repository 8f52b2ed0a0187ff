// internal/stream/events.go
package stream

import (
	"encoding/json"
	"fmt"
)

// Push-channel event tags. The server emits exactly these; anything else is
// dropped by the consumer.
const (
	EventProgress        = "progress"
	EventLog             = "log"
	EventHypotheses      = "hypotheses_extracted"
	EventTestingStart    = "hypothesis_testing_start"
	EventTestResult      = "hypothesis_test_result"
	EventTestingComplete = "hypothesis_testing_complete"
)

// Message is the wire envelope of one push-channel frame.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Decode parses a raw channel frame into a Message. Frames without an event
// tag are rejected so the caller can drop and log them.
func Decode(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("parse channel frame: %w", err)
	}
	if msg.Event == "" {
		return Message{}, fmt.Errorf("channel frame missing event tag")
	}
	return msg, nil
}

// Hypothesis is a candidate interpretation of the reference style, produced
// server-side during an exploration run.
type Hypothesis struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// TestResult is one server-side evaluation of a hypothesis.
type TestResult struct {
	Name   string  `json:"name,omitempty"`
	Passed bool    `json:"passed"`
	Score  float64 `json:"score,omitempty"`
	Detail string  `json:"detail,omitempty"`
}

// Result is the authoritative outcome of a completed exploration run, as
// returned by the start-exploration request.
type Result struct {
	Hypotheses  []Hypothesis            `json:"hypotheses"`
	TestResults map[string][]TestResult `json:"test_results"`
}

// Event payloads, one struct per tag.

type ProgressData struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

type LogData struct {
	Message string `json:"message"`
	Level   string `json:"level"`
	Source  string `json:"source"`
}

type HypothesesData struct {
	Hypotheses []Hypothesis `json:"hypotheses"`
}

type TestingStartData struct {
	HypothesisID string `json:"hypothesis_id"`
}

type TestResultData struct {
	HypothesisID string     `json:"hypothesis_id"`
	TestResult   TestResult `json:"test_result"`
}
