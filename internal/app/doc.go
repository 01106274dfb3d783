// Package app wires the prescribing explorer together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from config.yaml and RX_* environment variables
//  2. Initialize logging and OpenTelemetry
//  3. Build the dataset session, explorer service and WebSocket hub
//  4. Set up the chi router with the middleware chain and API routes
//  5. Serve until the context is cancelled or SIGINT/SIGTERM arrives
//
// # Usage
//
//	a, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return a.Run()
//
// # Graceful Shutdown
//
// Stop drains in-flight requests, closes WebSocket clients, waits for
// running dataset loads and flushes telemetry. Initialization errors are
// returned to the caller; the package never calls os.Exit.
package app
