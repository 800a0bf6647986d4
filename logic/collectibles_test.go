package logic

import "testing"

func TestIdempotentConfirm(t *testing.T) {
	s := NewCollectibleStore()
	s.Spawn(Collectible{ID: "c1", Kind: KindCurrency, Cell: GridPos{Row: 4, Col: 8}, Value: 10})

	if m, _ := s.ConfirmCollected(KindCurrency, "c1", GridPos{Row: 4, Col: 8}, true); m == nil {
		t.Fatalf("first confirm did not match")
	}
	active := s.Active(KindCurrency)
	if len(active) != 0 {
		t.Fatalf("item still active after confirm: %v", active)
	}

	// Duplicate confirm: absorbed, active set unchanged.
	if m, _ := s.ConfirmCollected(KindCurrency, "c1", GridPos{Row: 4, Col: 8}, true); m != nil {
		t.Fatalf("duplicate confirm matched again")
	}
	if len(s.Active(KindCurrency)) != 0 {
		t.Fatalf("duplicate confirm changed active set")
	}
}

func TestNoResurrection(t *testing.T) {
	s := NewCollectibleStore()
	s.Spawn(Collectible{ID: "c1", Kind: KindCurrency, Cell: GridPos{Row: 4, Col: 8}})
	s.ConfirmCollected(KindCurrency, "c1", GridPos{}, false)

	// Later duplicate spawn with the same id must not re-add it.
	s.Spawn(Collectible{ID: "c1", Kind: KindCurrency, Cell: GridPos{Row: 4, Col: 8}})
	if len(s.Active(KindCurrency)) != 0 {
		t.Fatalf("collected item resurrected by re-spawn")
	}
}

func TestOptimisticCollectHidesImmediately(t *testing.T) {
	s := NewCollectibleStore()
	m := Mapper{TileSize: 32}
	cell := GridPos{Row: 4, Col: 4}
	s.Spawn(Collectible{ID: "c1", Kind: KindCurrency, Cell: cell})

	hits := s.OptimisticCollect(KindCurrency, m.ToPixel(cell), m, 24)
	if len(hits) != 1 || hits[0].ID != "c1" {
		t.Fatalf("proximity collect missed: %v", hits)
	}
	// Flagged items never render again, even before the server confirms.
	if len(s.Active(KindCurrency)) != 0 {
		t.Fatalf("flagged item still renderable")
	}
	// And a second pass does not re-collect.
	if again := s.OptimisticCollect(KindCurrency, m.ToPixel(cell), m, 24); len(again) != 0 {
		t.Fatalf("item collected twice: %v", again)
	}
}

func TestOptimisticCollectRespectsRadius(t *testing.T) {
	s := NewCollectibleStore()
	m := Mapper{TileSize: 32}
	s.Spawn(Collectible{ID: "far", Kind: KindCurrency, Cell: GridPos{Row: 20, Col: 20}})

	if hits := s.OptimisticCollect(KindCurrency, m.ToPixel(GridPos{Row: 4, Col: 4}), m, 24); len(hits) != 0 {
		t.Fatalf("collected item out of range: %v", hits)
	}
}

func TestConfirmMatchFallbacks(t *testing.T) {
	s := NewCollectibleStore()
	cell := GridPos{Row: 8, Col: 12}
	s.Spawn(Collectible{ID: "c1", Kind: KindCurrency, Cell: cell})

	// id-only (modern event without position)
	if m, _ := s.ConfirmCollected(KindCurrency, "c1", GridPos{}, false); m == nil {
		t.Fatalf("id-only confirm failed")
	}

	// position-only (legacy event without id)
	s.Spawn(Collectible{ID: "c2", Kind: KindCurrency, Cell: GridPos{Row: 16, Col: 16}})
	if m, _ := s.ConfirmCollected(KindCurrency, "", GridPos{Row: 16, Col: 16}, true); m == nil || m.ID != "c2" {
		t.Fatalf("position-only confirm failed: %v", m)
	}

	// unmatched confirm for an unseen id is ignored
	if m, _ := s.ConfirmCollected(KindCurrency, "ghost", GridPos{Row: 1, Col: 1}, true); m != nil {
		t.Fatalf("matched an item the client never saw")
	}
}

func TestSynthesizedIDForLegacySpawns(t *testing.T) {
	s := NewCollectibleStore()
	cell := GridPos{Row: 4, Col: 8}
	s.Spawn(Collectible{Kind: KindCurrency, Cell: cell})

	active := s.Active(KindCurrency)
	if len(active) != 1 || active[0].ID != SynthesizeID(KindCurrency, cell) {
		t.Fatalf("legacy spawn id = %q, want synthesized", active[0].ID)
	}
	// Re-delivery of the same legacy spawn does not duplicate.
	s.Spawn(Collectible{Kind: KindCurrency, Cell: cell})
	if len(s.Active(KindCurrency)) != 1 {
		t.Fatalf("legacy spawn duplicated")
	}
}

func TestDeployNoDoubleDecrement(t *testing.T) {
	s := NewCollectibleStore()
	s.SetTrapInventory(2)

	cell := GridPos{Row: 8, Col: 8}
	if _, ok := s.DeployTrap(cell, "me"); !ok {
		t.Fatalf("deploy refused with inventory 2")
	}
	if s.TrapInventory() != 1 {
		t.Fatalf("inventory %d after deploy, want 1", s.TrapInventory())
	}

	// Server echo of our own deploy: adopts the id, leaves inventory alone.
	s.ApplyServerDeploy("srv-1", cell, "me", "me")
	if s.TrapInventory() != 1 {
		t.Fatalf("server echo double-decremented: %d", s.TrapInventory())
	}
	traps := s.Active(KindDeployedTrap)
	if len(traps) != 1 || traps[0].ID != "srv-1" {
		t.Fatalf("optimistic trap did not adopt server id: %v", traps)
	}

	// Someone else's deploy appends without touching inventory.
	s.ApplyServerDeploy("srv-2", GridPos{Row: 12, Col: 12}, "them", "me")
	if s.TrapInventory() != 1 || len(s.Active(KindDeployedTrap)) != 2 {
		t.Fatalf("foreign deploy mishandled: inv=%d traps=%d", s.TrapInventory(), len(s.Active(KindDeployedTrap)))
	}
}

func TestDeployRefusedWhenEmpty(t *testing.T) {
	s := NewCollectibleStore()
	if _, ok := s.DeployTrap(GridPos{Row: 4, Col: 4}, "me"); ok {
		t.Fatalf("deploy succeeded with no inventory")
	}
}

func TestTriggerTrapIdempotent(t *testing.T) {
	s := NewCollectibleStore()
	cell := GridPos{Row: 8, Col: 8}
	s.Spawn(Collectible{ID: "t1", Kind: KindDeployedTrap, Cell: cell})

	at, ok := s.TriggerTrap("t1", cell, true)
	if !ok || at != cell {
		t.Fatalf("trigger failed: %v %v", at, ok)
	}
	if _, ok := s.TriggerTrap("t1", cell, true); ok {
		t.Fatalf("duplicate trigger fired again")
	}
	if len(s.Active(KindDeployedTrap)) != 0 {
		t.Fatalf("triggered trap still active")
	}
}

func TestMergeScoresOverwrites(t *testing.T) {
	s := NewCollectibleStore()
	s.MergeScores(map[string]int{"p1": 5})
	s.MergeScores(map[string]int{"p1": 8, "p2": 3})

	if s.Scores()["p1"] != 8 || s.Scores()["p2"] != 3 {
		t.Fatalf("scoreboard merge wrong: %v", s.Scores())
	}
}
