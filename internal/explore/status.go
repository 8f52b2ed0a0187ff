// internal/explore/status.go
package explore

// SessionStatus mirrors the server's session status literal.
type SessionStatus string

const (
	StatusCreated         SessionStatus = "created"
	StatusExploring       SessionStatus = "exploring"
	StatusPaused          SessionStatus = "paused"
	StatusHypothesisReady SessionStatus = "hypothesis_ready"
	StatusReady           SessionStatus = "ready"
	StatusCompleted       SessionStatus = "completed"
	StatusError           SessionStatus = "error"
)
