// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"canonctl/internal/backup"
	"canonctl/internal/canonical"
	"canonctl/internal/config"
	"canonctl/internal/drift"
	"canonctl/internal/hostinfo"
	"canonctl/internal/issue"
	"canonctl/internal/profile"
)

// workspace bundles everything the drift-facing commands need: the loaded
// config, the canon manifest, a renderer with resolved placeholder values,
// the discovered profiles, and the backup store.
type workspace struct {
	cfg      *config.Config
	canonDir string
	manifest *canonical.Manifest
	renderer *canonical.Renderer
	profiles []profile.Profile
	store    *backup.Store
}

// openWorkspace loads the config and canon directory and discovers profiles.
// Config load errors were already reported by initRootConfig; the returned
// config is always usable.
func openWorkspace() (*workspace, error) {
	cfg, _ := config.Load()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	canonDir, err := config.CanonDir(cfg)
	if err != nil {
		return nil, err
	}
	if info, statErr := os.Stat(canonDir); statErr != nil || !info.IsDir() {
		rendered, _ := issue.Get(issue.CanonDirNotFoundId).Render(string(cfg.UI.ColorScheme))
		fmt.Fprint(os.Stderr, rendered)
		return nil, issue.NewErrorContext().
			WithOperation("open canon directory").
			WithResource(canonDir).
			WithSuggestion("Run 'canonctl config init' to scaffold it").
			WithSuggestion("Or point 'canon_dir' at an existing canon directory").
			Wrap(fmt.Errorf("not a directory")).
			BuildError()
	}

	manifest, err := canonical.LoadManifest(canonDir)
	if err != nil {
		return nil, err
	}

	info, err := hostinfo.Detect()
	if err != nil {
		return nil, err
	}
	renderer := canonical.NewRenderer(manifest, canonical.Values(info, cfg.Placeholders))

	profiles, err := profile.Discover(profile.DiscoverOptions{
		Roots:   cfg.ProfileRoots,
		Pinned:  cfg.Profiles,
		Exclude: cfg.ExcludeProfiles,
	})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		rendered, _ := issue.Get(issue.NoProfilesFoundId).Render(string(cfg.UI.ColorScheme))
		fmt.Fprint(os.Stderr, rendered)
		return nil, fmt.Errorf("no profiles to check")
	}

	backupDir, err := config.BackupDir(cfg)
	if err != nil {
		return nil, err
	}

	return &workspace{
		cfg:      cfg,
		canonDir: canonDir,
		manifest: manifest,
		renderer: renderer,
		profiles: profiles,
		store:    backup.NewStore(backupDir),
	}, nil
}

// selectProfiles narrows the discovered profiles to the given names; an
// empty list keeps all of them.
func (w *workspace) selectProfiles(names []string) ([]profile.Profile, error) {
	if len(names) == 0 {
		return w.profiles, nil
	}
	return profile.Filter(w.profiles, names)
}

// selectTargets narrows the manifest targets to the given names; an empty
// list keeps all of them.
func (w *workspace) selectTargets(names []string) ([]canonical.Target, error) {
	if len(names) == 0 {
		return w.manifest.Targets, nil
	}
	targets := make([]canonical.Target, 0, len(names))
	for _, name := range names {
		t, err := w.manifest.Target(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// scan runs the drift scanner over the selected profiles and targets.
func (w *workspace) scan(profileNames, targetNames []string) (*drift.Report, error) {
	profiles, err := w.selectProfiles(profileNames)
	if err != nil {
		return nil, err
	}
	targets, err := w.selectTargets(targetNames)
	if err != nil {
		return nil, err
	}
	return drift.NewScanner(w.manifest, w.renderer).Scan(profiles, targets)
}
