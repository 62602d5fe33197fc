package domain

import "fmt"

// SubmoduleState is the one-character status code git prints in front of
// every `git submodule status` line.
type SubmoduleState string

const (
	SubmoduleStateUnchanged     SubmoduleState = " "
	SubmoduleStateUninitialized SubmoduleState = "-"
	SubmoduleStateOutOfSync     SubmoduleState = "+"
	SubmoduleStateConflicted    SubmoduleState = "U"
)

// Name returns a human readable name for the state code.
func (s SubmoduleState) Name() string {
	switch s {
	case SubmoduleStateUnchanged:
		return "unchanged"
	case SubmoduleStateUninitialized:
		return "uninitialized"
	case SubmoduleStateOutOfSync:
		return "out-of-sync"
	case SubmoduleStateConflicted:
		return "conflicted"
	default:
		return "unknown"
	}
}

// SubmoduleEntry is one tracked submodule as reported by a single listing.
// Entries are built fresh for every listing and never mutated afterwards.
type SubmoduleEntry struct {
	SHA      string         `json:"sha"`
	Path     string         `json:"path"`
	Describe string         `json:"describe"`
	State    SubmoduleState `json:"state"`
}

// NewSubmoduleEntry creates a new SubmoduleEntry.
func NewSubmoduleEntry(sha, path, describe string, state SubmoduleState) SubmoduleEntry {
	return SubmoduleEntry{
		SHA:      sha,
		Path:     path,
		Describe: describe,
		State:    state,
	}
}

// IsActive reports whether git could describe the submodule, which only
// happens once it has been initialized and checked out.
func (e SubmoduleEntry) IsActive() bool {
	return e.Describe != ""
}

// IsConflicted reports whether the submodule has merge conflicts.
func (e SubmoduleEntry) IsConflicted() bool {
	return e.State == SubmoduleStateConflicted
}

// StateName returns the readable name of the entry's state code.
func (e SubmoduleEntry) StateName() string {
	return e.State.Name()
}

// Version parses the describe output as a semantic version.
func (e SubmoduleEntry) Version() (*Version, error) {
	if e.Describe == "" {
		return nil, fmt.Errorf("submodule %s has no describe output", e.Path)
	}
	return ParseDescribeVersion(e.Describe)
}

func (e SubmoduleEntry) String() string {
	if e.Describe == "" {
		return fmt.Sprintf("%s%s %s", e.State, e.SHA, e.Path)
	}
	return fmt.Sprintf("%s%s %s (%s)", e.State, e.SHA, e.Path, e.Describe)
}

// ActiveSubmodules returns the subsequence of entries that have a describe.
func ActiveSubmodules(entries []SubmoduleEntry) []SubmoduleEntry {
	active := make([]SubmoduleEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsActive() {
			active = append(active, e)
		}
	}
	return active
}

// ConflictedSubmodules returns the subsequence of entries with merge conflicts.
func ConflictedSubmodules(entries []SubmoduleEntry) []SubmoduleEntry {
	var conflicted []SubmoduleEntry
	for _, e := range entries {
		if e.IsConflicted() {
			conflicted = append(conflicted, e)
		}
	}
	return conflicted
}
