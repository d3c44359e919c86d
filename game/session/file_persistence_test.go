package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/fox-and-geese/game/engine"
	"github.com/wricardo/fox-and-geese/game/service"
)

// playedSession returns a session two moves in, with both moves on the undo stack
func playedSession(t *testing.T, id string) *service.Session {
	t.Helper()
	sess := service.NewSession(id, "standard", engine.New())
	for _, m := range []engine.Move{
		{From: engine.Pos(7, 4), To: engine.Pos(6, 4)},
		{From: engine.Pos(3, 4), To: engine.Pos(4, 4)},
	} {
		sess.PushUndo(sess.Engine.ToSnapshot())
		require.NoError(t, sess.Engine.ApplyMove(m.From, m.To))
	}
	return sess
}

func TestFilePersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	persistence, err := NewFilePersistence(dir)
	require.NoError(t, err)

	session := playedSession(t, "test1")

	t.Run("save and load session", func(t *testing.T) {
		// Given: a session with moves and undo entries
		require.NoError(t, persistence.Save(ctx, session))
		assert.True(t, persistence.Exists(ctx, "test1"))

		// When: it is loaded back
		loaded, err := persistence.Load(ctx, "test1")

		// Then: everything needed to continue the game survives
		require.NoError(t, err)
		assert.Equal(t, session.ID, loaded.ID)
		assert.Equal(t, session.ConfigName, loaded.ConfigName)
		assert.Equal(t, session.Engine.ToSnapshot(), loaded.Engine.ToSnapshot())
		assert.Equal(t, session.Start, loaded.Start)
		assert.Equal(t, session.UndoStack, loaded.UndoStack)
		assert.True(t, session.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("file is indented JSON", func(t *testing.T) {
		raw, err := os.ReadFile(filepath.Join(dir, "test1.json"))
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &doc))
		for _, key := range []string{"id", "config_name", "start", "game", "undo_stack"} {
			assert.Contains(t, doc, key)
		}
		assert.Contains(t, string(raw), "\n  \"game\"")
	})

	t.Run("save state changes", func(t *testing.T) {
		require.NoError(t, session.Engine.ApplyMove(engine.Pos(6, 4), engine.Pos(5, 4)))
		require.NoError(t, persistence.Save(ctx, session))

		loaded, err := persistence.Load(ctx, "test1")
		require.NoError(t, err)
		assert.Equal(t, engine.Pos(5, 4), loaded.Engine.FoxPosition())
		assert.Len(t, loaded.Engine.History(), 3)
	})

	t.Run("list sessions", func(t *testing.T) {
		require.NoError(t, persistence.Save(ctx, playedSession(t, "test2")))
		// stray files are ignored
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

		ids, err := persistence.ListAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"test1", "test2"}, ids)
	})

	t.Run("delete session", func(t *testing.T) {
		require.NoError(t, persistence.Delete(ctx, "test2"))
		assert.False(t, persistence.Exists(ctx, "test2"))
		assert.ErrorIs(t, persistence.Delete(ctx, "test2"), ErrSessionNotFound)
	})

	t.Run("load missing session", func(t *testing.T) {
		_, err := persistence.Load(ctx, "nope")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("load corrupted session", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"id":"broken","game":{"board":["---"]}}`), 0644))
		_, err := persistence.Load(ctx, "broken")
		assert.ErrorIs(t, err, engine.ErrInvalidSnapshot)
	})

	t.Run("reject unsafe IDs", func(t *testing.T) {
		bad := playedSession(t, "../outside")
		assert.ErrorIs(t, persistence.Save(ctx, bad), ErrInvalidSessionID)
		assert.False(t, persistence.Exists(ctx, "../outside"))
	})
}
