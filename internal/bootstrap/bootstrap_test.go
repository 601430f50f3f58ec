package bootstrap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/adventure/internal/config"
	"github.com/cory-johannsen/adventure/internal/game/world"
)

func TestLoadConfig_DefaultsWithoutPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "content/world.yaml", cfg.Game.WorldFile)
}

func TestLoadConfig_DevFile(t *testing.T) {
	cfg, err := LoadConfig("../../configs/dev.yaml")
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadWorld(t *testing.T) {
	w, err := LoadWorld(config.GameConfig{WorldFile: "../../content/world.yaml"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "Exam Day", w.Name)
}

func TestLoadWorld_Missing(t *testing.T) {
	_, err := LoadWorld(config.GameConfig{WorldFile: "nope.yaml"}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "loading world")
}

func TestLoadWorld_RejectsMetaVerb(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	doc := `
game: {start_location: 1, goal_location: 2, max_moves: 5}
locations:
  - {id: 1, name: A, brief_description: a, available_commands: {l: 2, history: 2}}
  - {id: 2, name: B, brief_description: b, available_commands: {}}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := LoadWorld(config.GameConfig{WorldFile: path}, zaptest.NewLogger(t))
	var mw *world.MalformedWorldError
	require.True(t, errors.As(err, &mw), "got %v", err)
	assert.Equal(t, []string{
		`location 1: navigation verb "history" is a reserved command`,
		`location 1: navigation verb "l" is a reserved command`,
	}, mw.Violations)
}

func TestGameOptions(t *testing.T) {
	var cfg config.Config
	cfg.Game = config.GameConfig{StartLocation: 3, MaxMoves: 10, UndoMoves: 2}
	cfg.Scripting.InstructionLimit = 500
	opts := GameOptions(cfg)
	assert.Equal(t, 3, opts.StartLocation)
	assert.Equal(t, 10, opts.MaxMoves)
	assert.Equal(t, 2, opts.UndoMoves)
	assert.Equal(t, 500, opts.ScriptLimit)
}
