package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/deckforge/internal/event"
)

func testLog() []event.Event {
	return []event.Event{
		{Type: event.TypeGameStarted, ID: "e1", Players: []string{"alice", "bob"},
			Supply: map[string]int{"Copper": 60}},
		{Type: event.TypeCardGained, ID: "e2", CausedBy: "e1", Player: "alice", Card: "Copper"},
		{Type: event.TypeTurnStarted, ID: "e3", CausedBy: "e1", Player: "alice", Turn: 1},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"game.json", "game.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			log := testLog()

			require.NoError(t, Save(path, log))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, log, got)
		})
	}
}

func TestCompressedFileIsNotPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json.gz")
	require.NoError(t, Save(path, testLog()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 2)
	// gzip magic bytes
	assert.Equal(t, byte(0x1f), raw[0])
	assert.Equal(t, byte(0x8b), raw[1])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
