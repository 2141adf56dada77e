// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings.
//
// # Configuration
//
// The Config struct defines the HTTP port, the admin API key, the request body
// limit (which bounds ebook uploads) and whether the conversion worker pool runs
// in-process.
package server
