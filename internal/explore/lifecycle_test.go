package explore

import "testing"

func TestLifecycleHooks(t *testing.T) {
	var entered, exited int
	var lastGen uint64

	l := &Lifecycle{}
	l.OnEnterExploring = func(gen uint64) {
		entered++
		lastGen = gen
	}
	l.OnExitExploring = func() { exited++ }

	t.Run("EnterFiresOnce", func(t *testing.T) {
		gen := l.Enter()
		if !l.Exploring() {
			t.Fatal("Expected exploring after Enter")
		}
		if entered != 1 || lastGen != gen {
			t.Errorf("entered=%d lastGen=%d gen=%d", entered, lastGen, gen)
		}

		// Entering again while exploring is a no-op.
		again := l.Enter()
		if entered != 1 {
			t.Errorf("Re-enter fired hook, entered=%d", entered)
		}
		if again != gen {
			t.Errorf("Re-enter changed generation: %d != %d", again, gen)
		}
	})

	t.Run("ExitFiresOnce", func(t *testing.T) {
		l.Exit()
		if l.Exploring() {
			t.Fatal("Expected not exploring after Exit")
		}
		l.Exit()
		if exited != 1 {
			t.Errorf("Exit fired %d times, want 1", exited)
		}
	})

	t.Run("GenerationBumpsPerRun", func(t *testing.T) {
		first := l.Enter()
		l.Exit()
		second := l.Enter()
		l.Exit()
		if second != first+1 {
			t.Errorf("Generations %d then %d, want increment", first, second)
		}
	})
}

func TestLifecycleObserveStatus(t *testing.T) {
	cases := []struct {
		status SessionStatus
		before bool
		after  bool
	}{
		{StatusExploring, false, true},
		{StatusCreated, true, false},
		{StatusPaused, true, false},
		{StatusHypothesisReady, true, false},
		{StatusReady, true, false},
		// Terminal statuses arrive via the request completion path and do
		// not flip the flag here.
		{StatusCompleted, true, true},
		{StatusError, false, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			l := &Lifecycle{}
			if tc.before {
				l.Enter()
			}
			l.ObserveStatus(tc.status)
			if l.Exploring() != tc.after {
				t.Errorf("Exploring after %s = %v, want %v", tc.status, l.Exploring(), tc.after)
			}
		})
	}
}

func TestLifecycleCurrentIf(t *testing.T) {
	l := &Lifecycle{}
	gen := l.Enter()

	if !l.CurrentIf(gen) {
		t.Error("Expected CurrentIf true for live generation")
	}
	if l.CurrentIf(gen + 1) {
		t.Error("Expected CurrentIf false for unknown generation")
	}

	l.Exit()
	if l.CurrentIf(gen) {
		t.Error("Expected CurrentIf false after Exit")
	}
}
