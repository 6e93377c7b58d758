// Package ai plans what an opponent intends to do on its turn.
//
// A Domain is a small hierarchical task network: abstract tasks decompose
// through ordered methods into operators, and each operator names a combat
// action and a target. Method preconditions are Lua functions.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// RootTask is the task every plan starts from.
const RootTask = "behave"

// DefaultDomain drives opponents whose class no other domain claims.
const DefaultDomain = "default"

// Task is an abstract goal decomposed by methods.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
// An empty Precondition always applies.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"`
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive step: one combat action against one target.
type Operator struct {
	ID string `yaml:"id"`
	// Action is a combat action label, e.g. "fight" or "defend".
	Action string `yaml:"action"`
	// Target is "nearest_enemy", "weakest_enemy", "self", a class, a name or
	// empty for actions without a target.
	Target string `yaml:"target"`
}

// Domain is one HTN behaviour loaded from YAML.
//
// Invariant: Task, Method and Operator IDs are unique within their slice.
type Domain struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	// Classes lists the opponent classes this domain drives.
	Classes   []string    `yaml:"classes"`
	Tasks     []*Task     `yaml:"tasks"`
	Methods   []*Method   `yaml:"methods"`
	Operators []*Operator `yaml:"operators"`
}

// ParseAction maps a combat action label to its ActionType.
func ParseAction(name string) (combat.ActionType, bool) {
	for a := combat.ActionMove; a <= combat.ActionBack; a++ {
		if a.String() == name {
			return a, true
		}
	}
	return combat.ActionBack, false
}

// Validate checks required fields, uniqueness and cross references.
//
// Postcondition: nil means every method references a known task, every
// subtask is a task or operator, and every operator action parses.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai: domain id must not be empty")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("ai: domain %q must have at least one task", d.ID)
	}

	tasks, err := uniqueIDs(d.ID, "task", len(d.Tasks), func(i int) string { return d.Tasks[i].ID })
	if err != nil {
		return err
	}
	if _, err := uniqueIDs(d.ID, "method", len(d.Methods), func(i int) string { return d.Methods[i].ID }); err != nil {
		return err
	}
	ops, err := uniqueIDs(d.ID, "operator", len(d.Operators), func(i int) string { return d.Operators[i].ID })
	if err != nil {
		return err
	}
	if !tasks[RootTask] {
		return fmt.Errorf("ai: domain %q has no %q task", d.ID, RootTask)
	}

	for _, op := range d.Operators {
		if _, ok := ParseAction(op.Action); !ok {
			return fmt.Errorf("ai: domain %q operator %q: unknown action %q", d.ID, op.ID, op.Action)
		}
	}
	for _, m := range d.Methods {
		if !tasks[m.TaskID] {
			return fmt.Errorf("ai: domain %q method %q: unknown task %q", d.ID, m.ID, m.TaskID)
		}
		if len(m.Subtasks) == 0 {
			return fmt.Errorf("ai: domain %q method %q: subtasks must not be empty", d.ID, m.ID)
		}
		for _, sub := range m.Subtasks {
			if !tasks[sub] && !ops[sub] {
				return fmt.Errorf("ai: domain %q method %q: subtask %q is neither a task nor an operator", d.ID, m.ID, sub)
			}
		}
	}
	return nil
}

func uniqueIDs(domain, kind string, n int, id func(i int) string) (map[string]bool, error) {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == "" {
			return nil, fmt.Errorf("ai: domain %q: %s %d has an empty id", domain, kind, i)
		}
		if seen[v] {
			return nil, fmt.Errorf("ai: domain %q: duplicate %s id %q", domain, kind, v)
		}
		seen[v] = true
	}
	return seen, nil
}

// OperatorByID returns the operator with the given ID.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns the methods of taskID in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomainBytes parses and validates one domain document. Unknown fields
// are rejected.
func LoadDomainBytes(data []byte) (*Domain, error) {
	var f yamlDomainFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing domain YAML: %w", err)
	}
	if f.Domain == nil {
		return nil, errors.New("missing top-level 'domain' key")
	}
	if err := f.Domain.Validate(); err != nil {
		return nil, err
	}
	return f.Domain, nil
}

// LoadDomains reads every *.yaml file in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the domains in file name order or the first error.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai: reading %q: %w", dir, err)
	}
	var domains []*Domain
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai: reading %s: %w", e.Name(), err)
		}
		d, err := LoadDomainBytes(data)
		if err != nil {
			return nil, fmt.Errorf("ai: %s: %w", e.Name(), err)
		}
		domains = append(domains, d)
	}
	return domains, nil
}
