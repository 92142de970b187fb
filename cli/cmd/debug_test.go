package cmd

import (
	"slices"
	"testing"
)

func TestParseDebugSettings(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		settings, err := parseDebugSettings("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if settings.enabled {
			t.Fatalf("expected debug disabled")
		}
	})

	t.Run("debug-all", func(t *testing.T) {
		settings, err := parseDebugSettings(debugGroupAll)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !settings.enabled {
			t.Fatalf("expected debug enabled")
		}
		if !slices.Contains(settings.groups, debugGroupAll) {
			t.Fatalf("expected the all group, got %v", settings.groups)
		}
	})

	t.Run("specific-groups", func(t *testing.T) {
		settings, err := parseDebugSettings("network,inventory")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Contains(settings.groups, debugGroupNetwork) || !slices.Contains(settings.groups, debugGroupInventory) {
			t.Fatalf("expected network and inventory groups, got %v", settings.groups)
		}
		if slices.Contains(settings.groups, debugGroupGraph) {
			t.Fatalf("did not expect the graph group")
		}
	})

	t.Run("all-wins-over-specific", func(t *testing.T) {
		settings, err := parseDebugSettings("network;all")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(settings.groups, []string{debugGroupAll}) {
			t.Fatalf("expected only the all group, got %v", settings.groups)
		}
	})

	t.Run("duplicates-collapse", func(t *testing.T) {
		settings, err := parseDebugSettings("network,network")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(settings.groups) != 1 {
			t.Fatalf("expected one group, got %v", settings.groups)
		}
	})

	t.Run("unknown-group", func(t *testing.T) {
		if _, err := parseDebugSettings("nope"); err == nil {
			t.Fatalf("expected error for unknown group")
		}
	})
}
