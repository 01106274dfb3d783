// Package websocket pushes dataset events to browser clients.
//
// A Hub owns the set of connected clients and fans out broadcast messages.
// Broadcast never blocks the caller: a full queue drops the message and a
// client whose send buffer is full is disconnected. Handler performs the
// HTTP upgrade, checks the Origin header against the configured origins
// and starts the read and write pumps of each Client.
//
// Every frame is a JSON envelope:
//
//	{"type": "dataset:loaded", "data": {...}, "timestamp": "2024-01-02T15:04:05Z"}
//
// The first frame a client receives has type "connection" and carries its
// client_id.
package websocket
