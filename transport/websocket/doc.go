// Package websocket pushes Fox and Geese state changes to browser clients.
//
// A Hub owns every connection. Clients join one session through
// /ws?session=<id>; each state change in that session is sent to them as a
// JSON Message with event "state_update" and the full game state. Incoming
// frames are ignored apart from keeping the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID)             // from an HTTP handler
//	hub.BroadcastToSession(sessionID, state) // after every change
//
// Registration, removal and fan-out all run on the Run goroutine, so the
// hub needs no locks. Broadcasts are queued and dropped when the queue is
// full rather than blocking the caller.
package websocket
