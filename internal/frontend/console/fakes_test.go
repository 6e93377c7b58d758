package console

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// scriptIO replays input lines and records everything written.
type scriptIO struct {
	lines   []string
	out     []string
	prompts int
}

func newScriptIO(lines ...string) *scriptIO { return &scriptIO{lines: lines} }

func (s *scriptIO) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l, nil
}

func (s *scriptIO) WriteLine(text string) error {
	s.out = append(s.out, text)
	return nil
}

func (s *scriptIO) WritePrompt(string) error {
	s.prompts++
	return nil
}

func (s *scriptIO) text() string { return strings.Join(s.out, "\n") }

// memStore is an in-memory SurvivorStore.
type memStore struct {
	mu    sync.Mutex
	lists map[string][]combat.Survivor
	saves int
}

func newMemStore() *memStore { return &memStore{lists: make(map[string][]combat.Survivor)} }

func (m *memStore) Load(_ context.Context, partyID string) ([]combat.Survivor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return combat.CloneSurvivors(m.lists[partyID]), nil
}

func (m *memStore) Save(_ context.Context, partyID string, survivors []combat.Survivor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[partyID] = combat.CloneSurvivors(survivors)
	m.saves++
	return nil
}

const cellarBattle = `
battle:
  id: cellar
  location: {book: vale, section: 12}
  view: {width: 7, height: 4}
  layout:
    - "#######"
    - "#o...s#"
    - "#X....#"
    - "#######"
  loot: [silver ring]
  opponents:
    - class: goblin
      name: Goblin
      health: 4
`

const brokenBattle = `
battle:
  id: broken
  layout:
    - "#####"
    - "#o..#"
    - "#####"
  opponents:
    - class: goblin
      health: 4
`

const partyFixture = `
party:
  location: {book: vale, section: 12}
  members:
    - class: warrior
      name: Alys
      health: 10
`

const cellarLevel = `
level:
  loot:
    - {x: 2, y: 1, items: [torch]}
  triggers:
    - {kind: victory, x: 2, y: 1, message: "The cellar is yours."}
`

const valeBook = `
book: vale
sections:
  - {section: 12, title: The Cellar}
`

// writeContent lays out a content directory. script, when non-empty,
// becomes scripts/cellar/hooks.lua.
func writeContent(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"battles/cellar.yaml": cellarBattle,
		"battles/broken.yaml": brokenBattle,
		"parties/party.yaml":  partyFixture,
		"levels/cellar.yaml":  cellarLevel,
		"books/vale.yaml":     valeBook,
	}
	if script != "" {
		files["scripts/cellar/hooks.lua"] = script
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}
