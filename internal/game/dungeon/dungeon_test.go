package dungeon_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dungeon"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

func TestLevel_DropPickupCollect(t *testing.T) {
	l := dungeon.NewLevel()
	at := grid.Point{X: 2, Y: 3}
	items := l.Drop(at, "torch", "rope")
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].InstanceID, items[1].InstanceID)

	snap := l.LootAt(at)
	snap[0].Name = "mutated"
	assert.Equal(t, "torch", l.LootAt(at)[0].Name, "LootAt returns a copy")

	got, ok := l.Pickup(at, items[0].InstanceID)
	require.True(t, ok)
	assert.Equal(t, "torch", got.Name)
	_, ok = l.Pickup(at, "missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"rope"}, names(l.Collect(at)))
	assert.Empty(t, l.Collect(at))
	assert.NotNil(t, l.Collect(at))
	assert.Empty(t, l.Loot())
}

func names(items []dungeon.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestLevel_LootRowMajor(t *testing.T) {
	l := dungeon.NewLevel()
	l.Drop(grid.Point{X: 3, Y: 1}, "c")
	l.Drop(grid.Point{X: 0, Y: 1}, "b")
	l.Drop(grid.Point{X: 5, Y: 0}, "a")
	entries := l.Loot()
	require.Len(t, entries, 3)
	assert.Equal(t, grid.Point{X: 5, Y: 0}, entries[0].At)
	assert.Equal(t, grid.Point{X: 0, Y: 1}, entries[1].At)
	assert.Equal(t, grid.Point{X: 3, Y: 1}, entries[2].At)
}

func TestLevel_EvaluateKinds(t *testing.T) {
	party := combat.Roster{
		{Class: "thief", Health: 3, Items: []string{"key"}},
		{Class: "priest", Health: 0, Items: []string{"amulet"}},
	}
	at := grid.Point{X: 1, Y: 1}
	tests := []struct {
		name    string
		trigger dungeon.Trigger
		fires   bool
	}{
		{"character present", dungeon.Trigger{Kind: dungeon.TriggerCharacter, Params: []string{"thief"}}, true},
		{"character dead", dungeon.Trigger{Kind: dungeon.TriggerCharacter, Params: []string{"priest"}}, false},
		{"item held", dungeon.Trigger{Kind: dungeon.TriggerItem, Params: []string{"key"}}, true},
		{"item held by the dead", dungeon.Trigger{Kind: dungeon.TriggerItem, Params: []string{"amulet"}}, false},
		{"any item", dungeon.Trigger{Kind: dungeon.TriggerAnyItem, Params: []string{"gem", "key"}}, true},
		{"all items", dungeon.Trigger{Kind: dungeon.TriggerAllItems, Params: []string{"gem", "key"}}, false},
		{"victory", dungeon.Trigger{Kind: dungeon.TriggerVictory}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := dungeon.NewLevel()
			tc.trigger.At = at
			require.NoError(t, l.Arm(tc.trigger))
			fired := l.Evaluate(at, party)
			if tc.fires {
				require.Len(t, fired, 1)
				assert.Empty(t, l.Armed(), "fired triggers are disarmed")
				assert.Empty(t, l.Evaluate(at, party), "one-shot")
			} else {
				assert.Empty(t, fired)
				assert.Len(t, l.Armed(), 1)
			}
		})
	}
}

func TestLevel_HookVeto(t *testing.T) {
	l := dungeon.NewLevel()
	at := grid.Point{X: 0, Y: 0}
	require.NoError(t, l.Arm(dungeon.Trigger{Kind: dungeon.TriggerVictory, At: at, Message: "won"}))
	allow := false
	l.SetHook(func(tr dungeon.Trigger) bool { return allow })
	assert.Empty(t, l.Evaluate(at, nil))
	assert.Len(t, l.Armed(), 1)
	allow = true
	fired := l.Evaluate(at, nil)
	require.Len(t, fired, 1)
	assert.Equal(t, "won", fired[0].Trigger.Message)
}

func TestTrigger_Validate(t *testing.T) {
	l := dungeon.NewLevel()
	assert.Error(t, l.Arm(dungeon.Trigger{Kind: "teleport"}))
	assert.Error(t, l.Arm(dungeon.Trigger{Kind: dungeon.TriggerItem}))
	assert.Error(t, l.Arm(dungeon.Trigger{Kind: dungeon.TriggerAllItems}))
	assert.Empty(t, l.Armed())
}

func TestLoadLevel(t *testing.T) {
	l, err := dungeon.LoadLevel([]byte(`
level:
  loot:
    - {x: 1, y: 2, items: [gold, gem]}
  triggers:
    - {kind: item, x: 4, y: 4, message: "The door opens.", params: [key]}
    - {kind: victory, x: 0, y: 0}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"gold", "gem"}, names(l.LootAt(grid.Point{X: 1, Y: 2})))
	assert.Len(t, l.Armed(), 2)

	_, err = dungeon.LoadLevel([]byte("level:\n  triggers:\n    - {kind: nope, x: 0, y: 0}\n"))
	assert.Error(t, err)
	_, err = dungeon.LoadLevel([]byte("level:\n  traps: []\n"))
	assert.Error(t, err)
}

func TestLevel_ConcurrentDrops(t *testing.T) {
	l := dungeon.NewLevel()
	at := grid.Point{X: 1, Y: 1}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Drop(at, "coin")
		}()
	}
	wg.Wait()
	assert.Len(t, l.LootAt(at), 16)
}

func TestLevel_Property_DropThenCollectRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := dungeon.NewLevel()
		at := grid.Point{X: rapid.IntRange(0, 9).Draw(rt, "x"), Y: rapid.IntRange(0, 9).Draw(rt, "y")}
		want := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 0, 8).Draw(rt, "names")
		l.Drop(at, want...)
		got := names(l.Collect(at))
		if len(want) == 0 {
			assert.Empty(rt, got)
			return
		}
		assert.Equal(rt, want, got)
		assert.Empty(rt, l.LootAt(at))
	})
}
