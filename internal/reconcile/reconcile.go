// SPDX-License-Identifier: MPL-2.0

// Package reconcile turns a drift report into repairs: drifted files are
// backed up and overwritten with the canonical render, missing files are
// created.
package reconcile

import (
	"fmt"
	"os"
	"path/filepath"

	"canonctl/internal/backup"
	"canonctl/internal/drift"
	"canonctl/internal/issue"
	"canonctl/internal/logging"
)

// ActionKind says what Apply did (or would do) for one result.
type ActionKind string

const (
	// ActionOverwrite replaces a drifted live file, after backing it up.
	ActionOverwrite ActionKind = "overwrite"
	// ActionCreate writes a missing live file. Nothing to back up.
	ActionCreate ActionKind = "create"
)

type (
	// Action is one planned or executed repair.
	Action struct {
		Kind   ActionKind
		Result drift.Result
	}

	// Summary describes an Apply run.
	Summary struct {
		Actions []Action

		// BackupRunID identifies the backup run, empty when nothing was
		// backed up or the run was a dry run.
		BackupRunID string

		// DryRun reports whether the actions were only planned.
		DryRun bool
	}

	// Reconciler repairs drift using a backup store.
	Reconciler struct {
		store  *backup.Store
		dryRun bool
	}
)

// New creates a Reconciler. With dryRun set, Apply plans repairs without
// touching any file.
func New(store *backup.Store, dryRun bool) *Reconciler {
	return &Reconciler{store: store, dryRun: dryRun}
}

// Plan lists the repairs a report calls for, without executing them.
func Plan(report *drift.Report) []Action {
	var actions []Action
	for _, result := range report.NeedsRepair() {
		kind := ActionOverwrite
		if result.State == drift.StateMissing {
			kind = ActionCreate
		}
		actions = append(actions, Action{Kind: kind, Result: result})
	}
	return actions
}

// Apply executes the repairs a report calls for. Every drifted file is
// copied into a backup run before it is overwritten; the run is committed
// even when a later write fails, so the backups taken so far stay usable.
func (r *Reconciler) Apply(report *drift.Report) (*Summary, error) {
	actions := Plan(report)
	summary := &Summary{DryRun: r.dryRun}

	if r.dryRun {
		summary.Actions = actions
		for _, action := range actions {
			logging.Logger().Info("would repair",
				"profile", action.Result.Profile.Name,
				"target", action.Result.Target.Name,
				"action", action.Kind)
		}
		return summary, nil
	}

	if len(actions) == 0 {
		return summary, nil
	}

	run, err := r.store.Begin()
	if err != nil {
		return nil, err
	}

	applyErr := r.apply(run, actions, summary)

	if err := run.Commit(); err != nil {
		if applyErr != nil {
			return summary, applyErr
		}
		return summary, err
	}
	if run.Len() > 0 {
		summary.BackupRunID = run.ID()
	}
	return summary, applyErr
}

func (r *Reconciler) apply(run *backup.Run, actions []Action, summary *Summary) error {
	for _, action := range actions {
		result := action.Result

		if action.Kind == ActionOverwrite {
			if err := run.Add(result.Profile.Name, result.Target.Name, result.LivePath); err != nil {
				return err
			}
		}

		if err := writeLive(result.LivePath, result.Rendered); err != nil {
			return err
		}

		summary.Actions = append(summary.Actions, action)
		logging.Logger().Info("repaired",
			"profile", result.Profile.Name,
			"target", result.Target.Name,
			"path", result.LivePath,
			"action", action.Kind)
	}
	return nil
}

// Counts tallies the summary by action kind.
func (s *Summary) Counts() (overwritten, created int) {
	for _, action := range s.Actions {
		switch action.Kind {
		case ActionOverwrite:
			overwritten++
		case ActionCreate:
			created++
		}
	}
	return overwritten, created
}

func writeLive(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return issue.NewErrorContext().
			WithOperation("write canonical config").
			WithResource(path).
			WithSuggestion("Check write permissions for the profile").
			Wrap(err).
			BuildError()
	}
	return nil
}
