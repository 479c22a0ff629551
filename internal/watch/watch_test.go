package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "src/lib.rs", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "src/lib.rs", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "src/lib.rs", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "Cargo.toml", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "src/.lib.rs.swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relevant(tt.event), tt.event.String())
	}
}

func TestRunTriggersOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.rs"), []byte("fn a() {}"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{Root: dir, Debounce: 20 * time.Millisecond}, func(context.Context) error {
			calls.Add(1)
			cancel()
			return nil
		})
	}()

	// Keep writing until the watcher is up and reports the change.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			break loop
		case <-ticker.C:
			_ = os.WriteFile(filepath.Join(dir, "lib.rs"), []byte("fn b() {}"), 0o644)
		}
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestRunReturnsCallbackError(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{Root: dir, Debounce: 10 * time.Millisecond}, func(context.Context) error {
			return boom
		})
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			assert.ErrorIs(t, err, boom)
			return
		case <-ticker.C:
			_ = os.WriteFile(filepath.Join(dir, "new.rs"), []byte("fn c() {}"), 0o644)
		case <-ctx.Done():
			t.Fatal("watcher never reported a change")
		}
	}
}

func TestRunMissingRoot(t *testing.T) {
	err := Run(context.Background(), Config{Root: filepath.Join(t.TempDir(), "missing")}, func(context.Context) error {
		return nil
	})
	assert.Error(t, err)
}
