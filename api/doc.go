// Package api provides the HTTP REST API for Fox and Geese sessions.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session, body {"config_id": "endgame"} (optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - POST /api/sessions/import - Start a session from a canonical or legacy save
//   - GET /api/sessions/{id} - Session info with current state
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Play a move for the side to move
//   - POST /api/sessions/{id}/undo - Undo the last move or reset
//   - POST /api/sessions/{id}/reset - Return to the starting position
//   - GET /api/sessions/{id}/history - Paginated move history
//   - GET /api/sessions/{id}/legal-moves - Legal moves (?from=r,c)
//   - GET /api/sessions/{id}/snapshot - Serializable state (?format=legacy)
//
// Starting positions:
//   - GET /api/configs - List starting positions
//   - POST /api/configs - Save a starting position
//   - GET /api/configs/{name} - One starting position
//
// A move body is either explicit positions or notation:
//
//	{"from": {"row": 7, "col": 4}, "to": {"row": 6, "col": 4}}
//	{"notation": "7,4-6,4"}
//
// A rejected move answers 422 with the unchanged state and the reason, so
// clients can show why without a second request. Moves after the game has
// ended answer 409.
//
// Errors are returned as JSON:
//
//	{"error": "session not found"}
//
// Every accepted change is pushed to WebSocket clients on /ws?session={id}.
package api
