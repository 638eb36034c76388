package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ou-cs3560/team-commits/internal/domain"
)

// Input is the run configuration file: one milestone, the teams to report
// on, and the logins to leave out of rosters (staff and TA accounts).
type Input struct {
	Milestone      domain.Milestone `yaml:"milestone"`
	Teams          []domain.Team    `yaml:"teams" validate:"min=1"`
	ExcludedLogins []string         `yaml:"excluded_logins"`
}

// LoadInput parses and validates the YAML input file at path. Every team
// must have a unique slug and an owner/name repo_path; the milestone window
// must be ordered. Validation failures abort before any query is issued.
func LoadInput(path string) (Input, error) {
	var in Input

	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("failed to read input file: %w", err)
	}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}

	if err := validator.New().Struct(in); err != nil {
		return in, fmt.Errorf("input file %s failed validation: %w", path, err)
	}
	if err := in.Milestone.Validate(); err != nil {
		return in, fmt.Errorf("input file %s: %w", path, err)
	}
	seen := make(map[string]struct{}, len(in.Teams))
	for _, team := range in.Teams {
		if team.Slug == "" {
			return in, fmt.Errorf("input file %s: team with repo_path %q has no slug", path, team.RepoPath)
		}
		if _, ok := seen[team.Slug]; ok {
			return in, fmt.Errorf("input file %s: duplicate team slug %q", path, team.Slug)
		}
		seen[team.Slug] = struct{}{}
		if _, _, err := team.SplitRepoPath(); err != nil {
			return in, fmt.Errorf("input file %s: %w", path, err)
		}
	}
	return in, nil
}
