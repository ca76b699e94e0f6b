// Package llm is a thin HTTP client for the locally hosted language-model
// service. Every call site must handle connection-refused, timeout, and
// malformed-output failures; the client only classifies them.
package llm
