// ABOUTME: Package chat persists conversations and talks to the language model
// ABOUTME: Covers the chat exchange plus tag suggestion and related-note lookup

// Package chat implements the conversational side of leafnote. Each browser
// chat session maps to one stored conversation; exchanges are persisted and
// the last few messages are replayed as context on the next turn.
package chat
