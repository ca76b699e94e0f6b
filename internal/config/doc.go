// Package config handles configuration loading for leafnote.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults; running without a
// config file at all is supported via Default.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	llm:
//	  host: "${OLLAMA_HOST}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	llm:
//	  chat_timeout: "30s"
//	sessions:
//	  ttl: "24h"
//	  sweep_interval: "1h"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":4321"
//
// Database:
//
//	database:
//	  path: "/var/lib/leafnote/leafnote.db"
//
// Language model service:
//
//	llm:
//	  host: "http://localhost:11434"
//	  model: "llama3"
//	  chat_timeout: "30s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text or json
package config
