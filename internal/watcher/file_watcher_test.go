package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with valid directories
// - NewFileWatcher returns error with invalid directory
// - Single batch file change fires callback after debounce
// - Multiple file changes are batched into one sorted callback
// - Debouncing works (rapid changes coalesced into single callback)
// - Pause/Resume behavior (accumulate during pause, fire on resume)
// - Directory added triggers recursive watch
// - Removed files are not reported
// - A batch created and deleted within one debounce window is not reported
// - A rename reports the new name only
// - Filter decides which files are reported
// - Stop() cleanup, idempotent and safe to call concurrently
// - Context cancellation stops watcher

const testDebounce = 100 * time.Millisecond

func jsonOnly(path string) bool {
	return strings.HasSuffix(path, ".json")
}

func newTestWatcher(t *testing.T, dir string) FileWatcher {
	t.Helper()
	w, err := NewFileWatcher([]string{dir}, Options{Filter: jsonOnly, Debounce: testDebounce})
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })
	return w
}

// recorder collects callback invocations.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 16)}
}

func (r *recorder) callback(files []string) {
	r.mu.Lock()
	r.calls = append(r.calls, files)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var files []string
	for _, call := range r.calls {
		files = append(files, call...)
	}
	return files
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	watcher, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NotNil(t, watcher)
	require.NoError(t, watcher.Stop())
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	nonexistent := filepath.Join(t.TempDir(), "nonexistent")

	watcher, err := NewFileWatcher([]string{nonexistent}, Options{})
	assert.Error(t, err)
	assert.Nil(t, watcher)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))

	// Wait for watcher to initialize
	time.Sleep(50 * time.Millisecond)

	batchFile := filepath.Join(tempDir, "batch.json")
	require.NoError(t, os.WriteFile(batchFile, []byte("[]"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{batchFile}, rec.all())
}

func TestFileWatcher_MultipleFileChangesAreBatchedAndSorted(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	names := []string{"c.json", "a.json", "b.json"}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte("[]"), 0644))
	}

	rec.wait(t)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, []string{
		filepath.Join(tempDir, "a.json"),
		filepath.Join(tempDir, "b.json"),
		filepath.Join(tempDir, "c.json"),
	}, rec.all())
}

func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	batchFile := filepath.Join(tempDir, "batch.json")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(batchFile, []byte("[]"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	rec.wait(t)
	time.Sleep(3 * testDebounce)

	assert.Equal(t, 1, rec.count(), "rapid writes coalesce into one callback")
	assert.Equal(t, []string{batchFile}, rec.all(), "same file appears once")
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	watcher.Pause()

	pausedFile := filepath.Join(tempDir, "paused.json")
	require.NoError(t, os.WriteFile(pausedFile, []byte("[]"), 0644))

	// Wait beyond debounce period - callback should NOT fire
	time.Sleep(4 * testDebounce)
	assert.Equal(t, 0, rec.count(), "No callbacks should fire while paused")

	watcher.Resume()

	rec.wait(t)
	assert.Contains(t, rec.all(), pausedFile)
}

func TestFileWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	newDir := filepath.Join(tempDir, "nested")
	require.NoError(t, os.Mkdir(newDir, 0755))

	// Give the watcher time to register the new directory
	time.Sleep(50 * time.Millisecond)

	batchFile := filepath.Join(newDir, "inner.json")
	require.NoError(t, os.WriteFile(batchFile, []byte("[]"), 0644))

	rec.wait(t)
	assert.Contains(t, rec.all(), batchFile)
}

func TestFileWatcher_RemovedFilesAreIgnored(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	batchFile := filepath.Join(tempDir, "gone.json")
	require.NoError(t, os.WriteFile(batchFile, []byte("[]"), 0644))

	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.Remove(batchFile))

	time.Sleep(4 * testDebounce)
	assert.Equal(t, 0, rec.count())
}

func TestFileWatcher_ShortLivedFileIsDropped(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	tmpFile := filepath.Join(tempDir, "tmp.json")
	keptFile := filepath.Join(tempDir, "kept.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(keptFile, []byte("[]"), 0644))
	require.NoError(t, os.Remove(tmpFile))

	rec.wait(t)
	assert.Equal(t, []string{keptFile}, rec.all())
}

func TestFileWatcher_RenameReportsNewName(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	oldName := filepath.Join(tempDir, "old.json")
	require.NoError(t, os.WriteFile(oldName, []byte("[]"), 0644))

	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	newName := filepath.Join(tempDir, "new.json")
	require.NoError(t, os.Rename(oldName, newName))

	rec.wait(t)
	assert.Equal(t, []string{newName}, rec.all())
}

func TestFileWatcher_PauseAfterStopDoesNotBlock(t *testing.T) {
	t.Parallel()

	watcher, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background(), func([]string) {}))
	require.NoError(t, watcher.Stop())

	done := make(chan struct{})
	go func() {
		watcher.Pause()
		watcher.Resume()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pause/Resume blocked after Stop")
	}
}

func TestFileWatcher_Filtering(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	watcher := newTestWatcher(t, tempDir)
	rec := newRecorder()
	require.NoError(t, watcher.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	jsonFile := filepath.Join(tempDir, "batch.json")
	txtFile := filepath.Join(tempDir, "notes.txt")
	require.NoError(t, os.WriteFile(txtFile, []byte("notes"), 0644))
	require.NoError(t, os.WriteFile(jsonFile, []byte("[]"), 0644))

	rec.wait(t)
	files := rec.all()
	assert.Contains(t, files, jsonFile)
	assert.NotContains(t, files, txtFile)
}

func TestFileWatcher_StopCleanup(t *testing.T) {
	t.Parallel()

	watcher, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)

	require.NoError(t, watcher.Start(context.Background(), func([]string) {}))
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, watcher.Stop())
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// Calling Stop() again should be safe
	require.NoError(t, watcher.Stop())
}

func TestFileWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	watcher, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NoError(t, watcher.Stop())
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	watcher := newTestWatcher(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, watcher.Start(ctx, func([]string) {}))
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	cancel()

	fw := watcher.(*batchWatcher)
	<-fw.doneCh
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestFileWatcher_ConcurrentStop(t *testing.T) {
	t.Parallel()

	watcher, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background(), func([]string) {}))
	time.Sleep(50 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			watcher.Stop()
		}()
	}
	wg.Wait()
}

func TestNewFileWatcher_DefaultDebounce(t *testing.T) {
	t.Parallel()

	watcher, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Equal(t, DefaultDebounce, watcher.(*batchWatcher).debounce)
}
