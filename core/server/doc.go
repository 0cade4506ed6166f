// Package server holds the HTTP status server configuration.
//
// The main application entry point handles the server startup; this package
// defines the configuration structure for it.
//
// # Configuration
//
// The Config struct defines the HTTP port and the API key protecting the
// endpoints.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings.
package server
