package dungeon

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

type yamlLevelFile struct {
	Level yamlLevel `yaml:"level"`
}

type yamlLevel struct {
	Loot     []yamlLoot    `yaml:"loot"`
	Triggers []yamlTrigger `yaml:"triggers"`
}

type yamlLoot struct {
	X     int      `yaml:"x"`
	Y     int      `yaml:"y"`
	Items []string `yaml:"items"`
}

type yamlTrigger struct {
	Kind    string   `yaml:"kind"`
	X       int      `yaml:"x"`
	Y       int      `yaml:"y"`
	Message string   `yaml:"message"`
	Params  []string `yaml:"params"`
}

// LoadLevel parses a level's loot and triggers from YAML bytes.
//
// Postcondition: Returns a populated Level or the first validation error.
func LoadLevel(data []byte) (*Level, error) {
	var file yamlLevelFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing level YAML: %w", err)
	}
	l := NewLevel()
	for _, yl := range file.Level.Loot {
		l.Drop(grid.Point{X: yl.X, Y: yl.Y}, yl.Items...)
	}
	for i, yt := range file.Level.Triggers {
		t := Trigger{
			Kind:    TriggerKind(yt.Kind),
			At:      grid.Point{X: yt.X, Y: yt.Y},
			Message: yt.Message,
			Params:  yt.Params,
		}
		if err := l.Arm(t); err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
	}
	return l, nil
}

// LoadLevelFile reads a level file from disk.
func LoadLevelFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file %s: %w", path, err)
	}
	return LoadLevel(data)
}
