// Package pipeline drives track resolution for imported playlists.
//
// The core abstraction is [Coordinator.ProcessBatch], which resolves one
// batch of pending tracks against the target catalog and persists the
// outcome per track. Batches are scheduled through an explicit [Scheduler]
// backed by a bounded worker pool; a run that leaves pending tracks behind
// enqueues its own successor instead of looping in place, so a playlist
// never monopolizes a worker.
//
// Catalog calls are paced through an injected [Pacer]. Progress updates are
// emitted via non-blocking channels for CLI/UI layers.
package pipeline
