// SPDX-License-Identifier: MPL-2.0

package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"canonctl/internal/testutil"
)

func TestRunAddAndCommit(t *testing.T) {
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "backups"))

	src := filepath.Join(root, "home", "alice", ".bashrc")
	testutil.MustWriteFile(t, src, "export EDITOR=vim\n")

	run, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if run.ID() == "" {
		t.Fatal("Begin() returned a run with an empty ID")
	}

	if err := run.Add("alice", "bashrc", src); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if run.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", run.Len())
	}
	if err := run.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	idx, err := store.Find(run.ID())
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(idx.Entries) != 1 {
		t.Fatalf("index has %d entries, want 1", len(idx.Entries))
	}

	entry := idx.Entries[0]
	if entry.Profile != "alice" || entry.Target != "bashrc" {
		t.Errorf("entry = %q/%q, want alice/bashrc", entry.Profile, entry.Target)
	}
	if entry.OriginalPath != src {
		t.Errorf("OriginalPath = %q, want %q", entry.OriginalPath, src)
	}

	stored := testutil.MustReadFile(t, filepath.Join(run.Dir(), entry.StoredAs))
	if stored != "export EDITOR=vim\n" {
		t.Errorf("stored content = %q, want original content", stored)
	}
}

func TestCommitEmptyRunRemovesDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "backups"))

	run, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := run.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	if _, err := os.Stat(run.Dir()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("empty run directory still exists after Commit")
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("List() returned %d runs, want 0", len(runs))
	}
}

func TestListNewestFirst(t *testing.T) {
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "backups"))
	src := filepath.Join(root, "file")
	testutil.MustWriteFile(t, src, "content\n")

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := store.Begin()
		if err != nil {
			t.Fatalf("Begin() error: %v", err)
		}
		if err := run.Add("alice", "bashrc", src); err != nil {
			t.Fatalf("Add() error: %v", err)
		}
		if err := run.Commit(); err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
		ids = append(ids, run.ID())
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("List() returned %d runs, want 3", len(runs))
	}
	for i, run := range runs {
		if i > 0 && runs[i-1].RunID < run.RunID {
			t.Errorf("runs not sorted newest first: %q before %q", runs[i-1].RunID, run.RunID)
		}
	}
	for _, id := range ids {
		found := false
		for _, run := range runs {
			if run.RunID == id {
				found = true
			}
		}
		if !found {
			t.Errorf("run %s missing from List()", id)
		}
	}
}

func TestListOnMissingStoreDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"))

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if runs != nil {
		t.Errorf("List() = %v, want nil", runs)
	}
}

func TestPrune(t *testing.T) {
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "backups"))
	src := filepath.Join(root, "file")
	testutil.MustWriteFile(t, src, "content\n")

	for i := 0; i < 4; i++ {
		run, err := store.Begin()
		if err != nil {
			t.Fatalf("Begin() error: %v", err)
		}
		if err := run.Add("alice", "bashrc", src); err != nil {
			t.Fatalf("Add() error: %v", err)
		}
		if err := run.Commit(); err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
	}

	removed, err := store.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("Prune() removed %d runs, want 2", len(removed))
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("%d runs remain after prune, want 2", len(runs))
	}

	removed, err = store.Prune(2)
	if err != nil {
		t.Fatalf("second Prune() error: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("second Prune() removed %d runs, want 0", len(removed))
	}
}

func TestPruneKeepZeroRemovesNothing(t *testing.T) {
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "backups"))
	src := filepath.Join(root, "file")
	testutil.MustWriteFile(t, src, "content\n")

	run, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := run.Add("alice", "bashrc", src); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := run.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	removed, err := store.Prune(0)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("Prune(0) removed %d runs, want 0", len(removed))
	}
}

func TestRestore(t *testing.T) {
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "backups"))

	src := filepath.Join(root, "home", "alice", ".bashrc")
	testutil.MustWriteFile(t, src, "original\n")

	run, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := run.Add("alice", "bashrc", src); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := run.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	// Simulate the apply overwriting the live file.
	testutil.MustWriteFile(t, src, "replaced\n")

	n, err := store.Restore(run.ID())
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if n != 1 {
		t.Errorf("Restore() = %d, want 1", n)
	}
	if got := testutil.MustReadFile(t, src); got != "original\n" {
		t.Errorf("restored content = %q, want %q", got, "original\n")
	}
}

func TestRestoreUnknownRun(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "backups"))

	if _, err := store.Restore("20990101T000000Z-deadbeef"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("Restore() error = %v, want ErrRunNotFound", err)
	}
}

func TestRestoreDetectsTamperedBackup(t *testing.T) {
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "backups"))

	src := filepath.Join(root, "file")
	testutil.MustWriteFile(t, src, "original\n")

	run, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := run.Add("alice", "bashrc", src); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := run.Commit(); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	idx, err := store.Find(run.ID())
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	tampered := filepath.Join(run.Dir(), idx.Entries[0].StoredAs)
	testutil.MustWriteFile(t, tampered, "tampered\n")

	if _, err := store.Restore(run.ID()); err == nil {
		t.Fatal("Restore() succeeded on a tampered backup, want checksum error")
	}
	// The live file must be untouched when verification fails.
	if got := testutil.MustReadFile(t, src); got != "original\n" {
		t.Errorf("live file changed to %q after failed restore", got)
	}
}

func TestStoredNameSanitizesSeparators(t *testing.T) {
	got := storedName("alice smith", "docker/settings")
	if got != "alice_smith__docker_settings" {
		t.Errorf("storedName() = %q", got)
	}
}
