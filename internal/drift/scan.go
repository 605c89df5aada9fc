// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"canonctl/internal/canonical"
	"canonctl/internal/issue"
	"canonctl/internal/profile"
)

// State is the per-profile, per-target comparison outcome.
type State string

const (
	// StateMatch means the live file equals the rendered canonical content.
	StateMatch State = "match"
	// StateDrift means the live file exists but differs.
	StateDrift State = "drift"
	// StateMissing means the live file does not exist.
	StateMissing State = "missing"
)

type (
	// Result is one profile/target comparison.
	Result struct {
		Profile profile.Profile
		Target  canonical.Target

		State State

		// LivePath is the target's absolute path inside the profile home.
		LivePath string

		// Rendered is the raw rendered canonical content for this target.
		Rendered string

		// CanonicalHash is the SHA-256 of the normalized rendered content.
		CanonicalHash string

		// LiveHash is the SHA-256 of the normalized live content.
		// Empty when the live file is missing or unreadable as the
		// target format.
		LiveHash string
	}

	// Report is a full scan across profiles and targets.
	Report struct {
		Results []Result
	}

	// Scanner compares rendered canonical content against live profiles.
	Scanner struct {
		manifest *canonical.Manifest
		renderer *canonical.Renderer
	}
)

// NewScanner creates a Scanner.
func NewScanner(m *canonical.Manifest, r *canonical.Renderer) *Scanner {
	return &Scanner{manifest: m, renderer: r}
}

// LivePath returns the target's path inside the profile home.
func LivePath(p profile.Profile, t canonical.Target) string {
	return filepath.Join(p.Home, filepath.FromSlash(t.Dest))
}

// CheckTarget renders the target once and compares it against a single
// profile's live file.
func (s *Scanner) CheckTarget(p profile.Profile, t canonical.Target) (Result, error) {
	rendered, err := s.renderer.RenderTarget(t)
	if err != nil {
		return Result{}, err
	}
	return s.checkRendered(p, t, rendered)
}

// Scan compares every target against every profile. Each target is rendered
// exactly once; rendering failures abort the scan since every profile would
// hit the same error.
func (s *Scanner) Scan(profiles []profile.Profile, targets []canonical.Target) (*Report, error) {
	report := &Report{}

	for _, t := range targets {
		rendered, err := s.renderer.RenderTarget(t)
		if err != nil {
			return nil, err
		}

		for _, p := range profiles {
			result, err := s.checkRendered(p, t, rendered)
			if err != nil {
				return nil, err
			}
			report.Results = append(report.Results, result)
		}
	}

	return report, nil
}

func (s *Scanner) checkRendered(p profile.Profile, t canonical.Target, rendered string) (Result, error) {
	canonNorm, err := Normalize([]byte(rendered), t.Format)
	if err != nil {
		return Result{}, issue.NewErrorContext().
			WithOperation("normalize rendered target").
			WithResource(t.Name).
			WithSuggestion("Check that the template renders to valid JSON").
			Wrap(err).
			BuildError()
	}

	result := Result{
		Profile:       p,
		Target:        t,
		LivePath:      LivePath(p, t),
		Rendered:      rendered,
		CanonicalHash: Hash(canonNorm),
	}

	live, err := os.ReadFile(result.LivePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.State = StateMissing
		return result, nil
	case err != nil:
		return Result{}, issue.NewErrorContext().
			WithOperation("read live config").
			WithResource(result.LivePath).
			WithSuggestion("Check file permissions for the profile").
			WithSuggestion("Exclude unreadable profiles with 'exclude_profiles'").
			Wrap(err).
			BuildError()
	}

	liveNorm, err := Normalize(live, t.Format)
	if err != nil {
		// A live JSON file that does not parse is drift, not a scan
		// failure: apply will replace it with the canonical render.
		result.State = StateDrift
		return result, nil
	}

	result.LiveHash = Hash(liveNorm)
	if result.LiveHash == result.CanonicalHash {
		result.State = StateMatch
	} else {
		result.State = StateDrift
	}
	return result, nil
}

// Counts tallies the report by state.
func (r *Report) Counts() (match, drifted, missing int) {
	for _, result := range r.Results {
		switch result.State {
		case StateMatch:
			match++
		case StateDrift:
			drifted++
		case StateMissing:
			missing++
		}
	}
	return match, drifted, missing
}

// NeedsRepair returns the results whose state is drift or missing.
func (r *Report) NeedsRepair() []Result {
	var out []Result
	for _, result := range r.Results {
		if result.State != StateMatch {
			out = append(out, result)
		}
	}
	return out
}
