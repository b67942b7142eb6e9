package model

import (
	"errors"
	"testing"
)

func TestInventoryAllOrdersUserStockFirst(t *testing.T) {
	inv := NewInventory()
	found := NewPanel(KindSourcedUsed, 1200, 1400, 85, Provenance{})
	inv.ReplaceDiscovered([]Panel{found})
	own := NewUserStock(1000, 1200)
	inv.AddUserStock(own)

	all := inv.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(all))
	}
	if all[0].ID != own.ID || all[1].ID != found.ID {
		t.Errorf("expected user stock before discovered panels, got %s, %s", all[0].ID, all[1].ID)
	}
}

func TestInventoryReplaceDiscoveredKeepsUserStock(t *testing.T) {
	inv := NewInventory()
	inv.AddUserStock(NewUserStock(1000, 1200))
	inv.ReplaceDiscovered([]Panel{NewPanel(KindSourcedUsed, 800, 600, 40, Provenance{})})
	inv.ReplaceDiscovered([]Panel{
		NewPanel(KindSourcedNew, 2000, 2100, 350, Provenance{}),
		NewPanel(KindSourcedNew, 2000, 2100, 350, Provenance{}),
	})

	if len(inv.UserAdded) != 1 {
		t.Errorf("expected user stock to survive a new search, got %d", len(inv.UserAdded))
	}
	if len(inv.Discovered) != 2 {
		t.Errorf("expected discovered panels to be replaced, got %d", len(inv.Discovered))
	}
	if inv.Len() != 3 {
		t.Errorf("expected 3 panels, got %d", inv.Len())
	}
}

func TestInventoryVisibilityToggle(t *testing.T) {
	inv := NewInventory()
	p := NewPanel(KindSourcedUsed, 1200, 1400, 85, Provenance{})
	inv.ReplaceDiscovered([]Panel{p})

	if err := inv.SetVisible(p.ID, false); err != nil {
		t.Fatal(err)
	}
	if len(inv.Visible()) != 0 {
		t.Error("hidden panel should not be visible")
	}
	if len(inv.Hidden()) != 1 || inv.Len() != 1 {
		t.Error("hidden panel should be retained in the inventory")
	}

	if err := inv.SetVisible(p.ID, true); err != nil {
		t.Fatal(err)
	}
	if len(inv.Visible()) != 1 {
		t.Error("panel should be visible again")
	}
}

func TestInventorySetForced(t *testing.T) {
	inv := NewInventory()
	p := NewPanel(KindSourcedUsed, 1200, 1400, 85, Provenance{})
	inv.ReplaceDiscovered([]Panel{p})

	if err := inv.SetForced(p.ID, true); err != nil {
		t.Fatal(err)
	}
	if !inv.FindByID(p.ID).Forced {
		t.Error("expected panel to be forced")
	}
}

func TestInventoryUnknownID(t *testing.T) {
	inv := NewInventory()
	if err := inv.SetVisible("missing", false); !errors.Is(err, ErrPanelNotFound) {
		t.Errorf("expected ErrPanelNotFound, got %v", err)
	}
	if err := inv.SetForced("missing", true); !errors.Is(err, ErrPanelNotFound) {
		t.Errorf("expected ErrPanelNotFound, got %v", err)
	}
	if err := inv.Remove("missing"); !errors.Is(err, ErrPanelNotFound) {
		t.Errorf("expected ErrPanelNotFound, got %v", err)
	}
}

func TestInventoryRemove(t *testing.T) {
	inv := NewInventory()
	own := NewUserStock(1000, 1200)
	found := NewPanel(KindSourcedUsed, 800, 600, 40, Provenance{})
	inv.AddUserStock(own)
	inv.ReplaceDiscovered([]Panel{found})

	if err := inv.Remove(own.ID); err != nil {
		t.Fatal(err)
	}
	if err := inv.Remove(found.ID); err != nil {
		t.Fatal(err)
	}
	if inv.Len() != 0 {
		t.Errorf("expected empty inventory, got %d", inv.Len())
	}
}

func TestInventorySnapshotsDropPositions(t *testing.T) {
	inv := NewInventory()
	inv.ReplaceDiscovered([]Panel{NewPanel(KindSourcedUsed, 800, 600, 40, Provenance{}).At(100, 100)})

	for _, p := range inv.Visible() {
		if p.Placed() {
			t.Error("inventory snapshots must not carry positions from earlier runs")
		}
	}
}

func TestFallbackPanels(t *testing.T) {
	if got := len(FallbackPanels(true, false)); got != 10 {
		t.Errorf("expected 10 re-use reserve panels, got %d", got)
	}
	if got := len(FallbackPanels(false, true)); got != 5 {
		t.Errorf("expected 5 new reserve panels, got %d", got)
	}
	if got := len(FallbackPanels(true, true)); got != 15 {
		t.Errorf("expected 15 reserve panels, got %d", got)
	}
	if got := len(FallbackPanels(false, false)); got != 0 {
		t.Errorf("expected no reserve panels, got %d", got)
	}
}

func TestWithFallback(t *testing.T) {
	found := []Panel{
		NewPanel(KindSourcedUsed, 800, 600, 40, Provenance{}),
		NewPanel(KindSourcedUsed, 800, 600, 40, Provenance{}),
		NewPanel(KindSourcedUsed, 800, 600, 40, Provenance{}),
	}
	if len(WithFallback(found, true, true)) != 3 {
		t.Error("a sufficient search result should be used as is")
	}
	if len(WithFallback(found[:1], true, false)) != 11 {
		t.Error("a short search result should be topped up with reserve stock")
	}
}
