// Package app provides application initialization and lifecycle management
// for the bioreport service. It wires configuration, logging, observability,
// the analysis services, and the HTTP server together at startup.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//  1. Load configuration from environment and files
//  2. Initialize logging and observability
//  3. Initialize services with their dependencies
//  4. Set up HTTP handlers and middleware
//  5. Configure and start the HTTP server
//  6. Set up graceful shutdown handlers
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM signals to ensure active requests
// are completed and final telemetry is flushed. All initialization errors
// are returned to the caller; the app does not call os.Exit() directly.
package app
