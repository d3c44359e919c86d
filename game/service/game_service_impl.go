package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wricardo/fox-and-geese/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. A nil logger falls
// back to slog.Default().
func NewGameService(sessions SessionManager, configs ConfigManager, logger *slog.Logger) GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.With("component", "service"),
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccess(),
		UndoDepth:      len(sess.UndoStack),
		GameState:      NewGameState(sess.Engine),
	}
}

// getSession looks a session up and marks it as accessed
func (s *gameServiceImpl) getSession(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session %q: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(ctx, sessionID); err != nil {
		s.logger.Warn("failed to update last access", "session", sessionID, "error", err)
	}
	return sess, nil
}

// persist saves the session. Storage errors are logged; the in-memory state
// has already changed.
func (s *gameServiceImpl) persist(ctx context.Context, sessionID, after string) {
	if err := s.sessions.Save(ctx, sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "after", after, "error", err)
	}
}

// CreateSession creates a new game session at the named starting position
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				available, listErr := s.configs.ListConfigs()
				if listErr == nil && len(available) > 0 {
					ids := make([]string, 0, len(available))
					for _, c := range available {
						ids = append(ids, c.ConfigID)
					}
					return nil, fmt.Errorf("config %q: %w (available: %v)", configName, err, ids)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create(ctx, "", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created", "session", sess.ID, "config", sess.ConfigName)
	return s.sessionInfo(sess), nil
}

// ImportSession starts a session from a saved position
func (s *gameServiceImpl) ImportSession(ctx context.Context, snapshot engine.Snapshot) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Import(ctx, "", snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to import session: %w", err)
	}

	s.logger.Info("session imported", "session", sess.ID, "moves", len(snapshot.History))
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", sessionID, err)
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// Move plays one turn for the side to move. A rejected move returns both a
// result describing it and an error wrapping the engine's reason.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, move engine.Move) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Engine.ToSnapshot()
	mover := sess.Engine.CurrentPlayer()
	turn := sess.Engine.ApplyTurn(move.From, move.To)
	state := NewGameState(sess.Engine)

	result := &MoveResult{
		Accepted:  turn.Accepted(),
		Outcome:   turn.Outcome,
		Status:    turn.Status,
		Kicked:    turn.Kicked,
		Move:      move,
		Message:   state.Message,
		GameState: state,
	}

	if !turn.Accepted() {
		result.Reason = turn.Err.Error()
		result.Message = fmt.Sprintf("Move %s rejected: %s", move, turn.Err)
		s.logger.Info("move rejected",
			"session", sessionID, "from", move.From.String(), "to", move.To.String(), "reason", turn.Err)
		return result, fmt.Errorf("move %s: %w", move, turn.Err)
	}

	sess.PushUndo(before)
	result.Events = moveEvents(mover, turn, sess.Engine)

	s.logger.Info("move applied",
		"session", sessionID,
		"player", string(mover),
		"from", move.From.String(),
		"to", move.To.String(),
		"kicked", turn.Kicked,
		"outcome", string(turn.Outcome))

	s.persist(ctx, sessionID, "move")
	return result, nil
}

// Undo restores the state before the last accepted move or reset
func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snap, ok := sess.PopUndo()
	if !ok {
		return nil, ErrNothingToUndo
	}
	restored, err := engine.FromSnapshot(snap)
	if err != nil {
		// the entry came from ToSnapshot, so this only happens on corrupted storage
		return nil, fmt.Errorf("failed to restore undo entry: %w", err)
	}
	sess.Engine = restored

	s.logger.Info("move undone", "session", sessionID, "undo_depth", len(sess.UndoStack))
	s.persist(ctx, sessionID, "undo")
	return NewGameState(sess.Engine), nil
}

// Reset returns a session to its starting position. The reset itself can be undone.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	start, err := engine.FromSnapshot(sess.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild starting position: %w", err)
	}
	sess.PushUndo(sess.Engine.ToSnapshot())
	sess.Engine = start

	s.logger.Info("session reset", "session", sessionID)
	s.persist(ctx, sessionID, "reset")
	return NewGameState(sess.Engine), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewGameState(sess.Engine), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := historyEntries(sess.Engine)
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []HistoryEntry{}
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// LegalMoves lists the legal moves of the side to move, optionally only
// those starting at from
func (s *gameServiceImpl) LegalMoves(ctx context.Context, sessionID string, from *engine.Position) ([]engine.Move, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	moves := []engine.Move{}
	if from == nil {
		moves = append(moves, sess.Engine.LegalMoves()...)
		return moves, nil
	}
	for _, to := range sess.Engine.LegalMovesFrom(*from) {
		moves = append(moves, engine.Move{From: *from, To: to})
	}
	return moves, nil
}

// ExportSnapshot returns the session's serializable state
func (s *gameServiceImpl) ExportSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Engine.ToSnapshot()
	return &snap, nil
}

// ListConfigs returns the available starting positions
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a starting position by name
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig stores a starting position
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *GameConfig) error {
	if _, err := config.NewEngine(); err != nil {
		return err
	}
	return s.configs.SaveConfig(configName, config)
}

// historyEntries numbers the engine history and attributes each move. The
// sides alternate, and the last move was made by the opponent of the side to move.
func historyEntries(e *engine.Engine) []HistoryEntry {
	history := e.History()
	last := e.CurrentPlayer().Opponent()
	entries := make([]HistoryEntry, len(history))
	for i, m := range history {
		player := last
		if (len(history)-1-i)%2 == 1 {
			player = last.Opponent()
		}
		entries[i] = HistoryEntry{
			Index:    i + 1,
			Player:   player,
			Move:     m,
			Notation: m.String(),
		}
	}
	return entries
}

// moveEvents describes an accepted turn
func moveEvents(mover engine.Player, turn engine.TurnResult, e *engine.Engine) []GameEvent {
	now := time.Now()
	to := turn.Move.To
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("%s moved %s", mover.Name(), turn.Move),
		Timestamp: now,
		Position:  &to,
	}}

	if turn.Kicked {
		mid := turn.Move.Midpoint()
		events = append(events, GameEvent{
			Type:      "kick",
			Message:   fmt.Sprintf("Goose at %s kicked (%d/%d)", mid, e.KickedCount(), engine.KickTarget),
			Timestamp: now,
			Position:  &mid,
		})
	}

	switch turn.Outcome {
	case engine.OutcomeFoxWon:
		events = append(events, GameEvent{
			Type:      "fox_won",
			Message:   "The Fox wins!",
			Timestamp: now,
		})
	case engine.OutcomeGeeseWon:
		events = append(events, GameEvent{
			Type:      "geese_won",
			Message:   "The Geese win: the Fox is trapped!",
			Timestamp: now,
		})
	}
	return events
}
