package command

import (
	"fmt"
	"slices"
	"strings"
)

// Registry resolves typed words to commands. Names and aliases share one
// namespace.
type Registry struct {
	byWord map[string]*Command
	sorted []*Command
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: No two commands may share a name or alias.
// Postcondition: Returns a Registry or an error naming the first collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command, len(cmds)*2)}
	for i := range cmds {
		cmd := &cmds[i]
		if prev, ok := r.byWord[cmd.Name]; ok {
			if prev.Name == cmd.Name {
				return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
			}
			return nil, fmt.Errorf("command name %q conflicts with an alias of %q", cmd.Name, prev.Name)
		}
		r.byWord[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			if prev, ok := r.byWord[alias]; ok {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, prev.Name, cmd.Name)
			}
			r.byWord[alias] = cmd
		}
		r.sorted = append(r.sorted, cmd)
	}
	slices.SortFunc(r.sorted, func(a, b *Command) int { return strings.Compare(a.Name, b.Name) })
	return r, nil
}

// DefaultRegistry returns a Registry of BattleCommands. It panics if the
// built-in table collides with itself.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BattleCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias, ignoring case and
// surrounding space.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.byWord[strings.ToLower(strings.TrimSpace(word))]
	return cmd, ok
}

// Commands returns every command sorted by name.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.sorted)
}

// CommandsByCategory groups Commands by category; each group stays sorted
// by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}
