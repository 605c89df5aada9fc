// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"io"
	"path/filepath"
	"testing"

	"canonctl/internal/backup"
	"canonctl/internal/canonical"
	"canonctl/internal/drift"
	"canonctl/internal/logging"
	"canonctl/internal/profile"
	"canonctl/internal/testutil"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	m.Run()
}

// fixture builds a canon dir with a text and a JSON target, plus two
// profiles: alice is in sync, bob has a drifted wslconfig and no docker
// settings file.
func fixture(t *testing.T) (*drift.Report, []profile.Profile) {
	t.Helper()

	canonDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(canonDir, canonical.ManifestFileName), `
targets:
  - name: wslconfig
    template: wslconfig.tmpl
    dest: .wslconfig
  - name: docker-settings
    template: settings.json.tmpl
    dest: docker/settings.json
    format: json
`)
	testutil.MustWriteFile(t, filepath.Join(canonDir, "wslconfig.tmpl"),
		"[wsl2]\nmemory={{WSL_MEMORY_GB}}GB\n")
	testutil.MustWriteFile(t, filepath.Join(canonDir, "settings.json.tmpl"),
		`{"memoryMiB": {{WSL_MEMORY_GB}}000, "wslEngineEnabled": true}`)

	m, err := canonical.LoadManifest(canonDir)
	if err != nil {
		t.Fatalf("LoadManifest() returned error: %v", err)
	}
	renderer := canonical.NewRenderer(m, map[string]string{"WSL_MEMORY_GB": "8"})

	aliceHome := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(aliceHome, ".wslconfig"),
		"[wsl2]\nmemory=8GB\n")
	testutil.MustWriteFile(t, filepath.Join(aliceHome, "docker", "settings.json"),
		`{"memoryMiB": 8000, "wslEngineEnabled": true}`)

	bobHome := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(bobHome, ".wslconfig"),
		"[wsl2]\nmemory=4GB\n")

	profiles := []profile.Profile{
		{Name: "alice", Home: aliceHome},
		{Name: "bob", Home: bobHome},
	}

	report, err := drift.NewScanner(m, renderer).Scan(profiles, m.Targets)
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	return report, profiles
}

func TestPlan(t *testing.T) {
	report, _ := fixture(t)

	actions := Plan(report)
	if len(actions) != 2 {
		t.Fatalf("Plan() returned %d actions, want 2", len(actions))
	}

	kinds := make(map[string]ActionKind)
	for _, action := range actions {
		kinds[action.Result.Profile.Name+"/"+action.Result.Target.Name] = action.Kind
	}
	if kinds["bob/wslconfig"] != ActionOverwrite {
		t.Errorf("bob/wslconfig action = %q, want overwrite", kinds["bob/wslconfig"])
	}
	if kinds["bob/docker-settings"] != ActionCreate {
		t.Errorf("bob/docker-settings action = %q, want create", kinds["bob/docker-settings"])
	}
}

func TestApply(t *testing.T) {
	report, profiles := fixture(t)
	bob := profiles[1]

	store := backup.NewStore(filepath.Join(t.TempDir(), "backups"))
	summary, err := New(store, false).Apply(report)
	if err != nil {
		t.Fatalf("Apply() returned error: %v", err)
	}

	overwritten, created := summary.Counts()
	if overwritten != 1 || created != 1 {
		t.Fatalf("Counts() = (%d, %d), want (1, 1)", overwritten, created)
	}
	if summary.BackupRunID == "" {
		t.Fatal("summary has no backup run ID")
	}

	// bob's files now match the canonical render.
	got := testutil.MustReadFile(t, filepath.Join(bob.Home, ".wslconfig"))
	if got != "[wsl2]\nmemory=8GB\n" {
		t.Errorf("repaired wslconfig = %q", got)
	}
	got = testutil.MustReadFile(t, filepath.Join(bob.Home, "docker", "settings.json"))
	if got != `{"memoryMiB": 8000, "wslEngineEnabled": true}` {
		t.Errorf("created docker settings = %q", got)
	}

	// The drifted file was backed up before the overwrite; the missing
	// one produced no backup entry.
	idx, err := store.Find(summary.BackupRunID)
	if err != nil {
		t.Fatalf("Find() returned error: %v", err)
	}
	if len(idx.Entries) != 1 {
		t.Fatalf("backup run has %d entries, want 1", len(idx.Entries))
	}
	entry := idx.Entries[0]
	if entry.Profile != "bob" || entry.Target != "wslconfig" {
		t.Errorf("backup entry = %q/%q, want bob/wslconfig", entry.Profile, entry.Target)
	}
	stored := testutil.MustReadFile(t, filepath.Join(store.Dir(), summary.BackupRunID, entry.StoredAs))
	if stored != "[wsl2]\nmemory=4GB\n" {
		t.Errorf("backed-up content = %q, want bob's original", stored)
	}
}

func TestApplyDryRun(t *testing.T) {
	report, profiles := fixture(t)
	bob := profiles[1]

	store := backup.NewStore(filepath.Join(t.TempDir(), "backups"))
	summary, err := New(store, true).Apply(report)
	if err != nil {
		t.Fatalf("Apply() returned error: %v", err)
	}

	if !summary.DryRun {
		t.Error("summary.DryRun = false, want true")
	}
	if len(summary.Actions) != 2 {
		t.Errorf("dry run planned %d actions, want 2", len(summary.Actions))
	}
	if summary.BackupRunID != "" {
		t.Errorf("dry run recorded backup run %q", summary.BackupRunID)
	}

	// Nothing was written or backed up.
	got := testutil.MustReadFile(t, filepath.Join(bob.Home, ".wslconfig"))
	if got != "[wsl2]\nmemory=4GB\n" {
		t.Errorf("dry run modified live file: %q", got)
	}
	runs, err := store.List()
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("dry run created %d backup runs", len(runs))
	}
}

func TestApplyNothingToRepair(t *testing.T) {
	report, _ := fixture(t)
	clean := &drift.Report{}
	for _, result := range report.Results {
		if result.State == drift.StateMatch {
			clean.Results = append(clean.Results, result)
		}
	}

	store := backup.NewStore(filepath.Join(t.TempDir(), "backups"))
	summary, err := New(store, false).Apply(clean)
	if err != nil {
		t.Fatalf("Apply() returned error: %v", err)
	}
	if len(summary.Actions) != 0 {
		t.Errorf("Apply() performed %d actions on a clean report", len(summary.Actions))
	}
	if summary.BackupRunID != "" {
		t.Errorf("clean apply recorded backup run %q", summary.BackupRunID)
	}
}
