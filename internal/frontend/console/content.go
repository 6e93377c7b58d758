package console

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/book"
	"github.com/cory-johannsen/skirmish/internal/game/dungeon"
)

// Content directory layout.
const (
	BattlesDir = "battles"
	PartiesDir = "parties"
	BooksDir   = "books"
	LevelsDir  = "levels"
	ScriptsDir = "scripts"
	AIDir      = "ai"
	// GlobalScriptsDir holds scripts shared by every battle.
	GlobalScriptsDir = "global"
)

// Content is the static data every battle session is built from.
type Content struct {
	Battles map[string]*battle.Definition
	Party   *battle.Party
	// Books is nil when the content has no books directory.
	Books book.Registry
	// Levels holds the raw level document of each battle id. A level is
	// parsed per session because its loot and triggers are consumed in play.
	Levels map[string][]byte
	// ScriptDir is the root of the per-battle Lua script directories.
	ScriptDir string
	// Domains plan opponent intents; empty when the content has no ai directory.
	Domains []*ai.Domain
}

// LoadContent reads battles, the party fixture, books and levels from dir.
//
// Precondition: dir must contain battles/ and parties/<partyFile>.
// Postcondition: Returns fully validated content or the first load error.
func LoadContent(dir, partyFile string) (*Content, error) {
	battles, err := battle.LoadDir(filepath.Join(dir, BattlesDir))
	if err != nil {
		return nil, fmt.Errorf("loading battles: %w", err)
	}
	party, err := battle.LoadParty(filepath.Join(dir, PartiesDir, partyFile))
	if err != nil {
		return nil, fmt.Errorf("loading party: %w", err)
	}
	c := &Content{
		Battles:   battles,
		Party:     party,
		Levels:    make(map[string][]byte),
		ScriptDir: filepath.Join(dir, ScriptsDir),
	}

	booksDir := filepath.Join(dir, BooksDir)
	if exists(booksDir) {
		reg, err := book.LoadRegistry(booksDir)
		if err != nil {
			return nil, fmt.Errorf("loading books: %w", err)
		}
		for _, loc := range reg.Locations() {
			s, _ := reg.Resolve(loc)
			if _, ok := battles[s.Battle]; s.Battle != "" && !ok {
				return nil, fmt.Errorf("book section %s names unknown battle %q", loc, s.Battle)
			}
		}
		c.Books = reg
	}

	levelsDir := filepath.Join(dir, LevelsDir)
	if exists(levelsDir) {
		entries, err := os.ReadDir(levelsDir)
		if err != nil {
			return nil, fmt.Errorf("reading levels: %w", err)
		}
		for _, e := range entries {
			name := e.Name()
			ext := filepath.Ext(name)
			if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(levelsDir, name))
			if err != nil {
				return nil, fmt.Errorf("reading level %s: %w", name, err)
			}
			if _, err := dungeon.LoadLevel(data); err != nil {
				return nil, fmt.Errorf("level %s: %w", name, err)
			}
			c.Levels[strings.TrimSuffix(name, ext)] = data
		}
	}

	aiDir := filepath.Join(dir, AIDir)
	if exists(aiDir) {
		if c.Domains, err = ai.LoadDomains(aiDir); err != nil {
			return nil, fmt.Errorf("loading ai domains: %w", err)
		}
	}
	return c, nil
}

// Level builds a fresh level for battle id, or nil when it has none.
func (c *Content) Level(id string) (*dungeon.Level, error) {
	data, ok := c.Levels[id]
	if !ok {
		return nil, nil
	}
	return dungeon.LoadLevel(data)
}

// Title returns the section title of loc, or loc itself when unknown.
func (c *Content) Title(loc book.Location) string {
	if c.Books != nil {
		if s, ok := c.Books.Resolve(loc); ok && s.Title != "" {
			return s.Title
		}
	}
	return loc.String()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
