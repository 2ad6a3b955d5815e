package watcher

import "context"

// FileWatcher monitors batch files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching the input directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	// The transform command pauses during its initial run. Pause and Resume
	// must be called after Start.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}
