// SPDX-License-Identifier: MPL-2.0

// Package backup manages the backup store written by apply runs.
//
// Each run gets its own directory named <timestamp>-<short run id>; the
// files backed up during the run are stored flat inside it, described by an
// index.toml. Runs are independent: one can be deleted or restored without
// touching the others.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"canonctl/internal/drift"
	"canonctl/internal/issue"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

const (
	indexFileName = "index.toml"
	timeLayout    = "20060102T150405Z"
)

// ErrRunNotFound is returned when a run ID does not exist in the store.
var ErrRunNotFound = errors.New("backup run not found")

type (
	// Entry describes one backed-up file within a run.
	Entry struct {
		// Profile is the profile name the file belonged to.
		Profile string `toml:"profile"`
		// Target is the manifest target name.
		Target string `toml:"target"`
		// OriginalPath is the absolute path the file was copied from.
		OriginalPath string `toml:"original_path"`
		// StoredAs is the file name inside the run directory.
		StoredAs string `toml:"stored_as"`
		// SHA256 is the hex digest of the backed-up content.
		SHA256 string `toml:"sha256"`
	}

	// Index is the serialized run metadata (index.toml).
	Index struct {
		RunID     string    `toml:"run_id"`
		StartedAt time.Time `toml:"started_at"`
		Entries   []Entry   `toml:"entries"`
	}

	// Store is a backup store rooted at a directory.
	Store struct {
		dir string
	}

	// Run is an in-progress backup run. Files are added during apply and
	// the index is written by Commit.
	Run struct {
		store *Store
		dir   string
		index Index
	}
)

// NewStore creates a Store rooted at dir. The directory is created lazily
// on the first Begin.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Begin starts a new run. The run directory is created immediately so a
// crash mid-apply leaves the partial backups on disk.
func (s *Store) Begin() (*Run, error) {
	now := time.Now().UTC()
	runID := now.Format(timeLayout) + "-" + uuid.NewString()[:8]
	dir := filepath.Join(s.dir, runID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup run directory: %w", err)
	}

	return &Run{
		store: s,
		dir:   dir,
		index: Index{
			RunID:     runID,
			StartedAt: now,
		},
	}, nil
}

// ID returns the run identifier (also the run directory name).
func (r *Run) ID() string {
	return r.index.RunID
}

// Dir returns the run directory.
func (r *Run) Dir() string {
	return r.dir
}

// Len returns the number of files backed up so far.
func (r *Run) Len() int {
	return len(r.index.Entries)
}

// Add copies srcPath into the run directory and records it in the index.
func (r *Run) Add(profileName, targetName, srcPath string) error {
	storedAs := storedName(profileName, targetName)
	dst := filepath.Join(r.dir, storedAs)

	if err := copyFile(srcPath, dst); err != nil {
		return issue.NewErrorContext().
			WithOperation("back up live config").
			WithResource(srcPath).
			WithSuggestion("Check read permissions on the profile's files").
			Wrap(err).
			BuildError()
	}

	sum, err := drift.HashFile(dst)
	if err != nil {
		return fmt.Errorf("hashing backup copy: %w", err)
	}

	r.index.Entries = append(r.index.Entries, Entry{
		Profile:      profileName,
		Target:       targetName,
		OriginalPath: srcPath,
		StoredAs:     storedAs,
		SHA256:       sum,
	})
	return nil
}

// Commit writes the run index. A run that backed up nothing removes its
// directory instead; an empty run is not worth listing.
func (r *Run) Commit() error {
	if len(r.index.Entries) == 0 {
		return os.RemoveAll(r.dir)
	}

	data, err := toml.Marshal(r.index)
	if err != nil {
		return fmt.Errorf("encoding backup index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, indexFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing backup index: %w", err)
	}
	return nil
}

// List returns all committed runs, newest first. Run directories without a
// readable index are skipped; they are reported by Restore when addressed
// directly.
func (s *Store) List() ([]Index, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup store: %w", err)
	}

	var runs []Index
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		idx, err := s.readIndex(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, idx)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].RunID > runs[j].RunID
	})
	return runs, nil
}

// Find returns the committed run with the given ID.
func (s *Store) Find(runID string) (Index, error) {
	if _, err := os.Stat(filepath.Join(s.dir, runID)); err != nil {
		return Index{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	idx, err := s.readIndex(runID)
	if err != nil {
		return Index{}, issue.NewErrorContext().
			WithOperation("read backup run index").
			WithResource(filepath.Join(s.dir, runID, indexFileName)).
			WithSuggestion("The run directory may be damaged; see 'canonctl backups list'").
			Wrap(err).
			BuildError()
	}
	return idx, nil
}

// Prune removes the oldest runs, keeping the newest keep runs. It returns
// the IDs of the removed runs. keep <= 0 removes nothing.
func (s *Store) Prune(keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) <= keep {
		return nil, nil
	}

	var removed []string
	for _, run := range runs[keep:] {
		if err := os.RemoveAll(filepath.Join(s.dir, run.RunID)); err != nil {
			return removed, fmt.Errorf("removing backup run %s: %w", run.RunID, err)
		}
		removed = append(removed, run.RunID)
	}
	return removed, nil
}

// Restore copies every file of the run back to its original path, verifying
// the stored content against the index hash first. It returns the number of
// restored files.
func (s *Store) Restore(runID string) (int, error) {
	idx, err := s.Find(runID)
	if err != nil {
		return 0, err
	}

	for _, entry := range idx.Entries {
		stored := filepath.Join(s.dir, runID, entry.StoredAs)

		sum, err := drift.HashFile(stored)
		if err != nil {
			return 0, issue.NewErrorContext().
				WithOperation("verify backup file").
				WithResource(stored).
				WithSuggestion("The run directory may be damaged; see 'canonctl backups list'").
				Wrap(err).
				BuildError()
		}
		if sum != entry.SHA256 {
			return 0, issue.NewErrorContext().
				WithOperation("verify backup file").
				WithResource(stored).
				WithSuggestion("The stored file no longer matches the run index; do not trust this run").
				Wrap(fmt.Errorf("checksum mismatch: index %s, file %s", entry.SHA256, sum)).
				BuildError()
		}
	}

	restored := 0
	for _, entry := range idx.Entries {
		stored := filepath.Join(s.dir, runID, entry.StoredAs)
		if err := copyFile(stored, entry.OriginalPath); err != nil {
			return restored, issue.NewErrorContext().
				WithOperation("restore backup file").
				WithResource(entry.OriginalPath).
				WithSuggestion("Check write permissions for the profile").
				Wrap(err).
				BuildError()
		}
		restored++
	}
	return restored, nil
}

func (s *Store) readIndex(runID string) (Index, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, runID, indexFileName))
	if err != nil {
		return Index{}, err
	}

	var idx Index
	if err := toml.Unmarshal(data, &idx); err != nil {
		return Index{}, fmt.Errorf("parsing index for run %s: %w", runID, err)
	}
	return idx, nil
}

// storedName flattens a profile/target pair into a file name safe for the
// run directory.
func storedName(profileName, targetName string) string {
	sanitize := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch r {
			case '/', '\\', ':', ' ':
				return '_'
			}
			return r
		}, s)
	}
	return sanitize(profileName) + "__" + sanitize(targetName)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
