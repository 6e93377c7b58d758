package book

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownLocation is returned when a location does not resolve to a section.
var ErrUnknownLocation = errors.New("unknown location")

// Section is the resolved data of one book section.
type Section struct {
	Location Location
	// Title is the short display name of the section.
	Title string
	// Battle is the id of the battle fought here. Empty means the section
	// holds no battle.
	Battle string
}

// Registry resolves symbolic locations to section data.
type Registry interface {
	// Resolve returns the section at loc.
	//
	// Postcondition: Returns (section, true) if loc is defined and known, or (nil, false).
	Resolve(loc Location) (*Section, bool)
}

// MemoryRegistry is an in-memory Registry keyed by Location.
type MemoryRegistry struct {
	sections map[Location]*Section
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sections: make(map[Location]*Section)}
}

// Add registers s, replacing any section at the same location.
//
// Precondition: s must be non-nil and s.Location must be defined.
func (r *MemoryRegistry) Add(s *Section) error {
	if s == nil || !s.Location.IsDefined() {
		return fmt.Errorf("book: section location must be defined")
	}
	r.sections[s.Location] = s
	return nil
}

// Resolve implements Registry.
func (r *MemoryRegistry) Resolve(loc Location) (*Section, bool) {
	if !loc.IsDefined() {
		return nil, false
	}
	s, ok := r.sections[loc]
	return s, ok
}

// Locations returns every registered location ordered by book then section.
func (r *MemoryRegistry) Locations() []Location {
	out := make([]Location, 0, len(r.sections))
	for loc := range r.sections {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Book != out[j].Book {
			return out[i].Book < out[j].Book
		}
		return out[i].Section < out[j].Section
	})
	return out
}

// MustResolve resolves loc or returns an error wrapping ErrUnknownLocation.
func MustResolve(r Registry, loc Location) (*Section, error) {
	s, ok := r.Resolve(loc)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, loc)
	}
	return s, nil
}

type yamlBook struct {
	Book     string        `yaml:"book"`
	Sections []yamlSection `yaml:"sections"`
}

type yamlSection struct {
	Section int    `yaml:"section"`
	Title   string `yaml:"title"`
	Battle  string `yaml:"battle"`
}

// LoadBookBytes parses one book YAML document into r.
//
// Precondition: data must be a YAML document with a non-empty book id.
// Postcondition: Every section is added to r, or an error is returned and r is
// left unchanged.
func (r *MemoryRegistry) LoadBookBytes(data []byte) error {
	var yb yamlBook
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&yb); err != nil {
		return fmt.Errorf("parsing book YAML: %w", err)
	}
	if yb.Book == "" {
		return fmt.Errorf("book id must not be empty")
	}

	seen := make(map[int]bool, len(yb.Sections))
	staged := make([]*Section, 0, len(yb.Sections))
	for _, ys := range yb.Sections {
		if ys.Section < 1 {
			return fmt.Errorf("book %q: section number must be >= 1, got %d", yb.Book, ys.Section)
		}
		if seen[ys.Section] {
			return fmt.Errorf("book %q: duplicate section %d", yb.Book, ys.Section)
		}
		seen[ys.Section] = true
		staged = append(staged, &Section{
			Location: At(yb.Book, ys.Section),
			Title:    strings.TrimSpace(ys.Title),
			Battle:   ys.Battle,
		})
	}
	for _, s := range staged {
		r.sections[s.Location] = s
	}
	return nil
}

// LoadRegistry reads every *.yaml file in dir as a book.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated registry or the first load error.
func LoadRegistry(dir string) (*MemoryRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading book dir %q: %w", dir, err)
	}
	reg := NewMemoryRegistry()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := reg.LoadBookBytes(data); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
