package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsPathUnderRoot(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	// Derived snapshot paths need not exist yet to be judged.
	inside := filepath.Join(base, "redfish", "v1", "Systems", "1", "resource.json")
	if !IsPathUnderRoot(base, inside) {
		t.Fatalf("expected %q to be inside %q", inside, base)
	}

	if IsPathUnderRoot(base, filepath.Join(t.TempDir(), "resource.json")) {
		t.Fatal("unrelated path must be outside the base directory")
	}
	if IsPathUnderRoot(base, filepath.Join(base, "..", "sibling", "resource.json")) {
		t.Fatal("traversal above the base directory must be rejected")
	}
}

func TestIsPathUnderRootRejectsSymlinkEscape(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	elsewhere := t.TempDir()

	link := filepath.Join(base, "Systems")
	if err := os.Symlink(elsewhere, link); err != nil {
		t.Fatalf("symlink failed: %v", err)
	}

	escaped := filepath.Join(link, "1", "resource.json")
	if IsPathUnderRoot(base, escaped) {
		t.Fatalf("path %q leaves %q through a symlink and must be rejected", escaped, base)
	}
}

func TestCleanupEmptyParentsStopsAtBase(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	leaf := filepath.Join(base, "redfish", "v1", "Systems", "1")
	if err := os.MkdirAll(leaf, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	if err := CleanupEmptyParents(leaf, base); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(base, "redfish")); !os.IsNotExist(err) {
		t.Fatalf("expected the emptied address directories to be removed, got err=%v", err)
	}
	if _, err := os.Stat(base); err != nil {
		t.Fatalf("base directory must survive the cleanup: %v", err)
	}
}

func TestCleanupEmptyParentsKeepsOccupiedAncestors(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	systems := filepath.Join(base, "redfish", "v1", "Systems")
	deleted := filepath.Join(systems, "1")
	kept := filepath.Join(systems, "2")
	for _, dir := range []string{deleted, kept} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
	}

	if err := CleanupEmptyParents(deleted, base); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if _, err := os.Stat(deleted); !os.IsNotExist(err) {
		t.Fatalf("expected %q to be removed, got err=%v", deleted, err)
	}
	if _, err := os.Stat(kept); err != nil {
		t.Fatalf("sibling snapshot directory must survive: %v", err)
	}
}
