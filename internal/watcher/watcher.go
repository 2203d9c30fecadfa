// Package watcher re-triggers analyses when report files change on disk.
package watcher

import "context"

// ReportWatcher monitors report files with debouncing.
type ReportWatcher interface {
	// Start begins watching, calling callback with the debounced set of changed reports.
	Start(ctx context.Context, callback func(reports []string)) error

	// Stop stops the watcher and cleans up resources.
	Stop() error
}
