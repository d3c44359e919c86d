// Package service provides the business logic layer for Fox and Geese.
//
// The service package implements:
//   - Multi-session game management
//   - Starting positions loaded by name
//   - Move processing with full-state undo
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads named starting positions.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine; the service serializes
// access to it and persists the session after every change.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, engine.Move{
//		From: engine.Pos(7, 4),
//		To:   engine.Pos(6, 4),
//	})
//
// Undo:
//
// Before each accepted move or reset the full engine state is pushed onto the
// session's undo stack. Undo pops it, so board, side to move, kicked count and
// history all return to what they were.
package service
