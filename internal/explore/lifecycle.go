// internal/explore/lifecycle.go
package explore

import "sync"

// Lifecycle owns the "exploration in progress" flag for one session and
// fires enter/exit hooks on transitions. The push channel's lifetime is a
// pure function of the flag: the caller wires OnEnterExploring to channel
// open and OnExitExploring to channel close, keeping the lifecycle logic
// independent of any particular view layer.
//
// Each entry into exploring bumps a generation counter. Deliveries that
// carry a stale generation (a result or frame from a superseded run) are
// ignored by the manager.
type Lifecycle struct {
	mu         sync.Mutex
	exploring  bool
	generation uint64

	// OnEnterExploring and OnExitExploring run, if set, while the
	// transition holds. Set them before first use; they are not called for
	// transitions to the state already held.
	OnEnterExploring func(generation uint64)
	OnExitExploring  func()
}

// Exploring reports whether an exploration is currently in flight.
func (l *Lifecycle) Exploring() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exploring
}

// Generation returns the current run generation. It only changes on entry
// into exploring.
func (l *Lifecycle) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// Enter flips the flag to true and returns the new generation. Entering
// while already exploring is a no-op and returns the current generation.
func (l *Lifecycle) Enter() uint64 {
	l.mu.Lock()
	if l.exploring {
		gen := l.generation
		l.mu.Unlock()
		return gen
	}
	l.exploring = true
	l.generation++
	gen := l.generation
	hook := l.OnEnterExploring
	l.mu.Unlock()

	if hook != nil {
		hook(gen)
	}
	return gen
}

// Exit flips the flag to false. Exiting while not exploring is a no-op.
func (l *Lifecycle) Exit() {
	l.mu.Lock()
	if !l.exploring {
		l.mu.Unlock()
		return
	}
	l.exploring = false
	hook := l.OnExitExploring
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// ObserveStatus reconciles the flag with a server-reported session status.
// Only the "exploring" literal forces the flag on; "created", "paused",
// "hypothesis_ready" and "ready" force it off. Terminal statuses are left
// to the request completion path, which already flips the flag.
func (l *Lifecycle) ObserveStatus(status SessionStatus) {
	switch status {
	case StatusExploring:
		l.Enter()
	case StatusCreated, StatusPaused, StatusHypothesisReady, StatusReady:
		l.Exit()
	}
}

// CurrentIf reports whether gen is still the live generation and the flag is
// set, i.e. whether a delivery tagged with gen should be applied.
func (l *Lifecycle) CurrentIf(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exploring && l.generation == gen
}
