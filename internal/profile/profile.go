// SPDX-License-Identifier: MPL-2.0

// Package profile discovers the user profiles whose configuration canonctl
// manages. A profile is a home directory: either an immediate subdirectory
// of a configured profile root (e.g. /mnt/c/Users) or a path pinned
// explicitly in configuration.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"canonctl/internal/issue"

	"github.com/bmatcuk/doublestar/v4"
)

// systemProfiles are well-known Windows account directories that are never
// real user profiles. Matched case-insensitively.
var systemProfiles = map[string]bool{
	"public":             true,
	"default":            true,
	"default user":       true,
	"all users":          true,
	"wdagutilityaccount": true,
}

type (
	// Profile is a discovered user profile.
	Profile struct {
		// Name is the profile's directory name (the account name).
		Name string
		// Home is the absolute path of the profile's home directory.
		Home string
	}

	// DiscoverOptions controls profile discovery.
	DiscoverOptions struct {
		// Roots are directories whose immediate subdirectories are
		// candidate profiles.
		Roots []string
		// Pinned are explicit profile home paths included regardless of
		// root scanning.
		Pinned []string
		// Exclude are glob patterns matched against profile names;
		// matches are skipped (pinned profiles included).
		Exclude []string
	}
)

// Discover scans the roots and resolves pinned entries into a deduplicated,
// name-sorted profile list.
func Discover(opts DiscoverOptions) ([]Profile, error) {
	seen := make(map[string]bool) // cleaned home path
	var profiles []Profile

	add := func(p Profile) error {
		excluded, err := isExcluded(p.Name, opts.Exclude)
		if err != nil {
			return err
		}
		if excluded {
			return nil
		}

		key := filepath.Clean(p.Home)
		if seen[key] {
			return nil
		}
		seen[key] = true
		profiles = append(profiles, p)
		return nil
	}

	for _, root := range opts.Roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("scan profile root").
				WithResource(root).
				WithSuggestion("Check the 'profile_roots' value with 'canonctl config show'").
				WithSuggestion("On WSL, Windows user homes usually mount under /mnt/c/Users").
				Wrap(err).
				BuildError()
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if systemProfiles[strings.ToLower(entry.Name())] {
				continue
			}
			p := Profile{
				Name: entry.Name(),
				Home: filepath.Join(root, entry.Name()),
			}
			if err := add(p); err != nil {
				return nil, err
			}
		}
	}

	for _, home := range opts.Pinned {
		info, err := os.Stat(home)
		if err != nil || !info.IsDir() {
			return nil, issue.NewErrorContext().
				WithOperation("resolve pinned profile").
				WithResource(home).
				WithSuggestion("Check the 'profiles' entries in your configuration").
				Wrap(fmt.Errorf("not a directory: %s", home)).
				BuildError()
		}
		if err := add(Profile{Name: filepath.Base(home), Home: home}); err != nil {
			return nil, err
		}
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}

// isExcluded reports whether name matches any exclude glob.
func isExcluded(name string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// Filter returns the profiles whose names are in names, preserving order.
// An empty names list returns profiles unchanged. Unknown names are an error
// so typos do not silently skip a profile.
func Filter(profiles []Profile, names []string) ([]Profile, error) {
	if len(names) == 0 {
		return profiles, nil
	}

	byName := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}

	var filtered []Profile
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", name)
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}
