package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	ref := filepath.Join(tmpDir, "reference.png")
	if err := os.WriteFile(ref, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(ref, 100*time.Millisecond, func(c Change) {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()
}

func TestNewInvalidDirectory(t *testing.T) {
	_, err := New("/nonexistent/path/reference.png", 100*time.Millisecond, func(c Change) {})
	if err == nil {
		t.Fatal("New() should return error when the parent directory is missing")
	}
}

func TestWatcherModify(t *testing.T) {
	tmpDir := t.TempDir()
	ref := filepath.Join(tmpDir, "reference.png")
	if err := os.WriteFile(ref, []byte("initial"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var changes []Change

	w, err := New(ref, 50*time.Millisecond, func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(ref, []byte("edited"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) == 0 {
		t.Fatal("Expected a change, got none")
	}
	found := false
	for _, c := range changes {
		if c.Path == ref && (c.Kind == ChangeModified || c.Kind == ChangeReplaced) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected modify for %s, got %+v", ref, changes)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	ref := filepath.Join(tmpDir, "reference.png")
	if err := os.WriteFile(ref, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var changes []Change

	w, err := New(ref, 50*time.Millisecond, func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	other := filepath.Join(tmpDir, "scratch.txt")
	if err := os.WriteFile(other, []byte("noise"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 0 {
		t.Errorf("Expected no changes for unrelated files, got %+v", changes)
	}
}

func TestWatcherRemove(t *testing.T) {
	tmpDir := t.TempDir()
	ref := filepath.Join(tmpDir, "reference.png")
	if err := os.WriteFile(ref, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var changes []Change

	w, err := New(ref, 50*time.Millisecond, func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(ref); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	found := false
	for _, c := range changes {
		if c.Kind == ChangeRemoved {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a removed change, got %+v", changes)
	}
}

func TestWatcherClose(t *testing.T) {
	tmpDir := t.TempDir()
	ref := filepath.Join(tmpDir, "reference.png")
	if err := os.WriteFile(ref, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(ref, 100*time.Millisecond, func(c Change) {})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// Calling Close again should not panic or error.
	if err := w.Close(); err != nil {
		t.Errorf("Second Close() error = %v", err)
	}
}
