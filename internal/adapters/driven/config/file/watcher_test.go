package file

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher(20 * time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return w
}

func TestWatcher_FileChange(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("a"), 0600))
	require.NoError(t, os.WriteFile(other, []byte("a"), 0600))

	w := startWatcher(t)
	var calls atomic.Int32
	require.NoError(t, w.Watch(rules, func() { calls.Add(1) }))

	require.NoError(t, os.WriteFile(other, []byte("b"), 0600))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load(), "unrelated files are ignored")

	require.NoError(t, os.WriteFile(rules, []byte("b"), 0600))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DirectoryChange(t *testing.T) {
	dir := t.TempDir()

	w := startWatcher(t)
	var calls atomic.Int32
	require.NoError(t, w.Watch(dir, func() { calls.Add(1) }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy_system.txt"), []byte("x"), 0600))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("a"), 0600))

	w, err := NewWatcher(150 * time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	defer w.Close()

	var calls atomic.Int32
	require.NoError(t, w.Watch(rules, func() { calls.Add(1) }))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(rules, []byte{byte('a' + i)}, 0600))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_Watch_MissingPath(t *testing.T) {
	w, err := NewWatcher(0)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing.yaml"), func() {}))
}
