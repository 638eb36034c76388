// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Milestone is the reporting window over which commit activity is measured.
// It is loaded once per run and shared by every team.
type Milestone struct {
	Name  string    `yaml:"name"`
	Begin time.Time `yaml:"begin"`
	End   time.Time `yaml:"end"`
}

// Validate checks the begin/end ordering invariant.
func (m Milestone) Validate() error {
	if m.End.Before(m.Begin) {
		return fmt.Errorf("milestone %q: begin %s is after end %s", m.Name, m.Begin.Format(time.RFC3339), m.End.Format(time.RFC3339))
	}
	return nil
}

// Team pairs a team slug with the repository it works in.
type Team struct {
	Slug     string `yaml:"slug"`
	RepoPath string `yaml:"repo_path"`
}

// SplitRepoPath splits RepoPath into its owner and name segments.
// Anything other than exactly two non-empty segments is a configuration error.
func (t Team) SplitRepoPath() (owner, name string, err error) {
	parts := strings.Split(t.RepoPath, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("team %q: repo_path %q is not in owner/name form", t.Slug, t.RepoPath)
	}
	return parts[0], parts[1], nil
}
