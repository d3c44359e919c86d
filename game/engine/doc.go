// Package engine implements the rules of Fox and Geese.
//
// The game is played on the cross-shaped part of a 9x9 grid. One side moves
// the single fox, the other moves the geese. Geese step one square in any
// direction. The fox steps one square or jumps a goose in a straight or
// diagonal line, removing it from the board ("kicking" it). The fox wins once
// it has kicked ten geese; the geese win when the fox cannot move after a
// goose turn.
//
// Core Types:
//
// Board is the grid of Cell values. Engine owns a Board together with the side
// to move, the kicked counter, the move history and the cached fox position and
// mobility, and is the only thing that mutates the board.
//
// Turn Flow:
//
//	e := engine.New()
//	res := e.ApplyTurn(engine.Pos(7, 4), engine.Pos(6, 4))
//	if !res.Accepted() {
//		log.Println(res.Err)
//	}
//
// Rejected moves leave the engine untouched. Once the status is terminal
// every move fails with ErrGameOver.
//
// Persistence:
//
// ToSnapshot and FromSnapshot convert to and from a plain serializable value.
// DecodeSnapshot also reads the save files written by the browser version of
// the game.
//
// An Engine does no I/O and is not safe for concurrent use.
package engine
