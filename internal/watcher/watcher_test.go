package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_NotifiesOnCreate(t *testing.T) {
	dir := t.TempDir()

	w, err := New(50)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	// Watching twice is harmless
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch again: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Notify():
		if got != dir {
			t.Errorf("expected notification for %s, got %s", dir, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}
}

func TestWatcher_Unwatch(t *testing.T) {
	dir := t.TempDir()

	w, err := New(20)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}
	if err := w.Unwatch(dir); err != nil {
		t.Fatal(err)
	}
	if err := w.Unwatch(dir); err != nil {
		t.Errorf("second Unwatch should be a no-op, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "quiet.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Notify():
		t.Errorf("unexpected notification for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}
