// Package usecase contains the business logic of the application.
package usecase

import (
	"fmt"

	"github.com/ou-cs3560/team-commits/internal/domain"
	"github.com/ou-cs3560/team-commits/internal/gateway"
)

// NormalizeCommit reduces a raw commit edge to its date and a resolved
// contributor identity. A linked GitHub account always wins; otherwise the
// identity is synthesized as "Name (email)" from the raw author fields, so
// commits from unregistered emails stay attributable and groupable.
//
// Known limitation: the synthesized form cannot tell one person using two
// emails apart from two people sharing a display name. Missing name or email
// fields are embedded as-is without further validation.
func NormalizeCommit(edge gateway.CommitEdge) domain.NormalizedCommit {
	login := edge.AuthorLogin
	if !edge.HasUser {
		login = fmt.Sprintf("%s (%s)", edge.AuthorName, edge.AuthorEmail)
	}
	return domain.NormalizedCommit{
		CommittedDate: edge.CommittedDate,
		Login:         login,
	}
}

// NormalizeCommits maps NormalizeCommit over a history page.
func NormalizeCommits(edges []gateway.CommitEdge) []domain.NormalizedCommit {
	commits := make([]domain.NormalizedCommit, 0, len(edges))
	for _, edge := range edges {
		commits = append(commits, NormalizeCommit(edge))
	}
	return commits
}
