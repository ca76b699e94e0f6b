// Package store provides SQLite-backed persistence for leafnote: users,
// sessions, notes with tags, and chat conversations. All timestamps are
// stored as RFC3339 UTC text and every query is parameterized.
package store
