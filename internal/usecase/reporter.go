package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/ou-cs3560/team-commits/internal/domain"
	"github.com/ou-cs3560/team-commits/internal/gateway"
)

// TeamReport is the outcome of one team's pipeline run. Exactly one of
// Counts or Err is meaningful; RateLimit is the snapshot of the last query
// issued for the team, zero when the team failed before any network call.
type TeamReport struct {
	Team      domain.Team
	Counts    domain.DailyCount
	RateLimit gateway.RateLimit
	Err       error
}

// Failed reports whether the team's pipeline ended in an error.
func (r TeamReport) Failed() bool { return r.Err != nil }

// Reporter is the use case that walks the configured teams sequentially:
// fetch the repository's commit history over the milestone window, normalize,
// filter, aggregate. One query is in flight at a time; a limiter enforces a
// minimum delay between consecutive teams to stay inside the API budget.
type Reporter struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
	pacer   *rate.Limiter
}

// NewReporter creates a new Reporter instance. delay is the minimum interval
// between per-team queries.
func NewReporter(fetcher gateway.Fetcher, logger *log.Logger, delay time.Duration) *Reporter {
	return &Reporter{
		fetcher: fetcher,
		logger:  logger,
		pacer:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Run processes every team and returns one TeamReport per team, in input
// order. A failing team is recorded in its report and does not stop the
// remaining teams. The only way Run stops early is context cancellation,
// in which case the reports collected so far are returned alongside the
// context error.
func (r *Reporter) Run(ctx context.Context, milestone domain.Milestone, teams []domain.Team, excluded ExclusionSet) ([]TeamReport, error) {
	if err := milestone.Validate(); err != nil {
		return nil, err
	}
	r.logger.Printf("Usecase: reporting on %d teams for milestone %q.", len(teams), milestone.Name)

	reports := make([]TeamReport, 0, len(teams))
	for _, team := range teams {
		if err := r.pacer.Wait(ctx); err != nil {
			return reports, err
		}
		report := r.runTeam(ctx, milestone, team, excluded)
		if report.Failed() {
			r.logger.Printf("Team %s failed: %v", team.Slug, report.Err)
		} else {
			r.logger.Printf("Team %s: %d commits across %d contributor-days.", team.Slug, report.Counts.Total(), len(report.Counts))
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *Reporter) runTeam(ctx context.Context, milestone domain.Milestone, team domain.Team, excluded ExclusionSet) TeamReport {
	report := TeamReport{Team: team}

	owner, name, err := team.SplitRepoPath()
	if err != nil {
		report.Err = err
		return report
	}

	edges, rl, err := r.fetcher.FetchCommitHistory(ctx, owner, name, milestone.Begin, milestone.End)
	report.RateLimit = rl
	if err != nil {
		report.Err = fmt.Errorf("failed to fetch commit history for team %s: %w", team.Slug, err)
		return report
	}

	commits := FilterCommits(excluded, NormalizeCommits(edges))
	report.Counts = AggregateByDay(commits)
	return report
}

// TeamRoster fetches a team's membership and drops excluded logins.
func (r *Reporter) TeamRoster(ctx context.Context, org, teamSlug string, excluded ExclusionSet) ([]gateway.Member, gateway.RateLimit, error) {
	members, rl, err := r.fetcher.FetchTeamMembers(ctx, org, teamSlug)
	if err != nil {
		return nil, rl, fmt.Errorf("failed to fetch members of team %s/%s: %w", org, teamSlug, err)
	}
	return FilterMembers(excluded, members), rl, nil
}
