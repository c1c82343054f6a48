package filewatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "catalog.csv")
	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(watched, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(100*time.Millisecond, watched, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	if len(w.Files()) != 1 {
		t.Fatalf("expected one watched file, got %v", w.Files())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan string, 8)
	go w.Run(ctx, func(p string) { changes <- p }, nil)

	if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(watched, []byte("b"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case p := <-changes:
		abs, _ := filepath.Abs(watched)
		if p != abs {
			t.Fatalf("unexpected path %q", p)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	// burst collapsed into a single notification; nothing for other.txt
	select {
	case p := <-changes:
		t.Fatalf("unexpected extra change %q", p)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w, err := New(time.Millisecond, filepath.Join(dir, "x"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(string) {}, nil) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	if _, err := New(time.Millisecond, filepath.Join(t.TempDir(), "nope", "file")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
