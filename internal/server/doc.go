// ABOUTME: Package server exposes the HTTP API over the application services
// ABOUTME: Routes, session gating, JSON error shape, and graceful shutdown

// Package server assembles the leafnote HTTP API. Every route except the
// public allow-list sits behind the session middleware; all error responses
// share one JSON shape with status codes 400, 401, 404, 409, and 500.
package server
