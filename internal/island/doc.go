// ABOUTME: Package island caches per-island UI state between form-driven actions
// ABOUTME: State lives in process memory only and expires after an idle hour

// Package island holds the in-memory state behind interactive page fragments.
// Form submissions name an island and an action; the dispatcher runs the
// action against internal services and caches the merged result so the next
// render can pick it up. Nothing here is persisted.
package island
