// Package dungeon tracks roguelike loot and trigger entries keyed by map
// coordinate.
package dungeon

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Item is one loot instance lying on the map.
type Item struct {
	InstanceID string
	Name       string
}

// LootEntry is the pile of items on one cell.
type LootEntry struct {
	At    grid.Point
	Items []Item
}

// Level holds the loot and triggers of one dungeon map.
// Loot and trigger state are safe for concurrent use.
type Level struct {
	mu       sync.RWMutex
	loot     map[grid.Point][]Item
	triggers map[grid.Point][]Trigger
	hook     Hook
}

// NewLevel creates a Level with no loot and no triggers.
func NewLevel() *Level {
	return &Level{
		loot:     make(map[grid.Point][]Item),
		triggers: make(map[grid.Point][]Trigger),
	}
}

// Drop places new item instances named names on at.
//
// Postcondition: each item gets a fresh instance ID; returns the created items.
func (l *Level) Drop(at grid.Point, names ...string) []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	created := make([]Item, 0, len(names))
	for _, n := range names {
		it := Item{InstanceID: uuid.NewString(), Name: n}
		l.loot[at] = append(l.loot[at], it)
		created = append(created, it)
	}
	return created
}

// Pickup removes the item with instanceID from at.
//
// Postcondition: on failure the level is unchanged.
func (l *Level) Pickup(at grid.Point, instanceID string) (Item, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := l.loot[at]
	for i, it := range items {
		if it.InstanceID == instanceID {
			items = append(items[:i], items[i+1:]...)
			if len(items) == 0 {
				delete(l.loot, at)
			} else {
				l.loot[at] = items
			}
			return it, true
		}
	}
	return Item{}, false
}

// Collect removes and returns every item on at.
//
// Postcondition: the cell holds no loot afterwards; the result is never nil.
func (l *Level) Collect(at grid.Point) []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := l.loot[at]
	if len(items) == 0 {
		return []Item{}
	}
	delete(l.loot, at)
	return items
}

// LootAt returns a snapshot copy of the items on at.
func (l *Level) LootAt(at grid.Point) []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	items := l.loot[at]
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Loot returns a snapshot of every loot entry in row-major order.
func (l *Level) Loot() []LootEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]LootEntry, 0, len(l.loot))
	for at, items := range l.loot {
		out = append(out, LootEntry{At: at, Items: append([]Item(nil), items...)})
	}
	sortEntries(out, func(i int) grid.Point { return out[i].At })
	return out
}
