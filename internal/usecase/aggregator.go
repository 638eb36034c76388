package usecase

import "github.com/ou-cs3560/team-commits/internal/domain"

// AggregateByDay groups commits by (contributor, calendar day) and counts
// each group. The day is taken in the commit timestamp's own offset; no
// timezone conversion is performed. The result is unordered and the input is
// not mutated, so repeated calls over the same slice yield identical maps.
// Zero commits yield an empty, non-nil map.
func AggregateByDay(commits []domain.NormalizedCommit) domain.DailyCount {
	counts := make(domain.DailyCount, len(commits))
	for _, commit := range commits {
		key := domain.ContributorDay{
			Login: commit.Login,
			Day:   commit.Day(),
		}
		counts[key]++
	}
	return counts
}
