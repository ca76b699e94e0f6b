// Package notes provides note CRUD with deterministic slug derivation,
// offset pagination, and markdown rendering for read responses.
package notes
