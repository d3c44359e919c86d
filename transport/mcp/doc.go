// Package mcp exposes Fox and Geese to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool calls the REST API from package api
// and formats the answer as plain text with an ASCII board. It serves both
// transports the binary offers:
//   - Stdio: `fox-and-geese mcp` for local MCP clients
//   - HTTP: POST /mcp next to the REST API
//
// MCP Tools:
//   - create_session, import_session, list_sessions, get_session
//   - game_state, move, legal_moves, undo, reset_game, move_history
//   - list_configs, describe_cell, game_rules
//
// Moves use "row,col-row,col" notation. A rejected move is returned as a tool
// error that still shows the unchanged board and the reason.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
