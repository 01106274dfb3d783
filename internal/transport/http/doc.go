// Package http implements the explorer's HTTP handlers. Handlers stay thin:
// they decode and validate requests, call the explorer service and render
// the result. Failures are written as RFC 7807 problems by the shared
// errors.ErrorHandler; RegisterProblems adds the explorer's sentinels to it.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → ExplorerService → session / dataprocessing
//	                                             ↓
//	HTTP Response ← Handler ← Service Result ←──┘
//
// # Empty Results
//
// A plot, summary or export whose filters match no rows is not an error. It
// answers 200 with
//
//	{"status": "no_data", "message": "No rows match the selected filters."}
//
// # Downloads
//
// The export routes buffer the encoded CSV or XLSX and send it as an
// attachment, so an encoding failure still produces a problem response.
package http
