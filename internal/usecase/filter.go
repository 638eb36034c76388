package usecase

import (
	"github.com/ou-cs3560/team-commits/internal/domain"
	"github.com/ou-cs3560/team-commits/internal/gateway"
)

// ExclusionSet holds the logins that must not appear in a report, typically
// staff and TA accounts.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds an ExclusionSet from a list of logins.
func NewExclusionSet(logins []string) ExclusionSet {
	set := make(ExclusionSet, len(logins))
	for _, login := range logins {
		set[login] = struct{}{}
	}
	return set
}

// FilterMembers returns the members whose login is not in the exclusion set.
// An empty set returns the input unchanged.
func FilterMembers(excluded ExclusionSet, members []gateway.Member) []gateway.Member {
	if len(excluded) == 0 {
		return members
	}
	kept := make([]gateway.Member, 0, len(members))
	for _, m := range members {
		if _, ok := excluded[m.Login]; ok {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// FilterCommits is the commit-side filtering hook. It currently passes every
// commit through: only member-list filtering is active. The signature exists
// so commit exclusion can be switched on without touching callers.
func FilterCommits(excluded ExclusionSet, commits []domain.NormalizedCommit) []domain.NormalizedCommit {
	return commits
}
