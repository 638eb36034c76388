// Package gateway provides a gateway to the GitHub GraphQL API,
// abstracting away the underlying client and transport stack.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// ErrLookup reports that a nested path in a query response was null where
// data was expected: an unknown organization, team, repository, or a
// repository without a default branch.
var ErrLookup = errors.New("lookup failed")

// RateLimit is the budget snapshot GitHub returns alongside every query.
// Cost is the price of the query that produced this snapshot.
type RateLimit struct {
	Limit     int
	Cost      int
	Remaining int
	ResetAt   time.Time
}

// Member is a single entry of a team's membership roster.
type Member struct {
	Login string
	Name  string
	ID    string
	URL   string
}

// CommitEdge is one commit from a repository's default-branch history.
// AuthorLogin and AuthorID are only meaningful when HasUser is true; commits
// authored with an email not linked to any GitHub account have no user node.
type CommitEdge struct {
	CommittedDate   time.Time
	AuthorName      string
	AuthorEmail     string
	AuthorLogin     string
	AuthorID        string
	HasUser         bool
	CommitURL       string
	CommittedViaWeb bool
	MessageHeadline string
}

// Fetcher defines the behavior of a gateway for fetching team and commit
// information from GitHub. Each call returns the rate-limit snapshot produced
// by that query so callers can make throttling decisions without an extra
// round trip.
type Fetcher interface {
	FetchTeamMembers(ctx context.Context, org, teamSlug string) ([]Member, RateLimit, error)
	FetchCommitHistory(ctx context.Context, owner, name string, since, until time.Time) ([]CommitEdge, RateLimit, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// rateLimitBlock is appended to every query document.
type rateLimitBlock struct {
	Limit     githubv4.Int
	Cost      githubv4.Int
	Remaining githubv4.Int
	ResetAt   githubv4.DateTime
}

// teamMembersQuery resolves a team roster. The organization and team fields
// are pointers so a null response can be told apart from an empty one.
type teamMembersQuery struct {
	Organization *struct {
		Team *struct {
			ID      githubv4.ID
			Members struct {
				Nodes []struct {
					Login githubv4.String
					Name  githubv4.String
					ID    githubv4.ID
					URL   githubv4.URI
				}
			}
		} `graphql:"team(slug: $teamSlug)"`
	} `graphql:"organization(login: $orgName)"`
	RateLimit rateLimitBlock
}

// commitHistoryQuery resolves the default branch's commit history within a
// time window. Only the first page the API returns is requested; TotalCount
// lets the caller see when a history was truncated.
type commitHistoryQuery struct {
	Repository *struct {
		DefaultBranchRef *struct {
			Name   githubv4.String
			Target struct {
				Commit struct {
					History struct {
						TotalCount githubv4.Int
						Edges      []struct {
							Node struct {
								CommittedDate   githubv4.DateTime
								CommitURL       githubv4.URI
								CommittedViaWeb githubv4.Boolean
								MessageHeadline githubv4.String
								Author          *struct {
									Name  githubv4.String
									Email githubv4.String
									User  *struct {
										Login githubv4.String
										ID    githubv4.ID
									}
								}
							}
						}
					} `graphql:"history(since: $since, until: $until)"`
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
	RateLimit rateLimitBlock
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The token must be non-empty; it is the only credential the gateway ever holds.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	if token == "" {
		return nil, errors.New("github token must not be empty")
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(newRetryTransport(nil), github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchTeamMembers returns the roster of org's team identified by teamSlug.
func (g *GitHubGateway) FetchTeamMembers(ctx context.Context, org, teamSlug string) ([]Member, RateLimit, error) {
	g.logger.Printf("Fetching members of team %s/%s...", org, teamSlug)
	variables := map[string]interface{}{
		"orgName":  githubv4.String(org),
		"teamSlug": githubv4.String(teamSlug),
	}
	var q teamMembersQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, RateLimit{}, fmt.Errorf("failed to execute team members query: %w", err)
	}
	rl := q.RateLimit.snapshot()
	if q.Organization == nil {
		return nil, rl, fmt.Errorf("%w: organization %q not found", ErrLookup, org)
	}
	if q.Organization.Team == nil {
		return nil, rl, fmt.Errorf("%w: team %q not found in organization %q", ErrLookup, teamSlug, org)
	}

	members := make([]Member, 0, len(q.Organization.Team.Members.Nodes))
	for _, node := range q.Organization.Team.Members.Nodes {
		members = append(members, Member{
			Login: string(node.Login),
			Name:  string(node.Name),
			ID:    idString(node.ID),
			URL:   uriString(node.URL),
		})
	}
	g.logger.Printf("Fetched %d members of team %s/%s (rate limit remaining: %d).", len(members), org, teamSlug, rl.Remaining)
	return members, rl, nil
}

// FetchCommitHistory returns the default-branch commits of owner/name within
// [since, until]. Only the single page the API returns by default is fetched;
// longer histories are reported truncated via the logger.
func (g *GitHubGateway) FetchCommitHistory(ctx context.Context, owner, name string, since, until time.Time) ([]CommitEdge, RateLimit, error) {
	g.logger.Printf("Fetching commit history of %s/%s from %s to %s...", owner, name, since.Format(time.RFC3339), until.Format(time.RFC3339))
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
		"since": githubv4.GitTimestamp{Time: since},
		"until": githubv4.GitTimestamp{Time: until},
	}
	var q commitHistoryQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, RateLimit{}, fmt.Errorf("failed to execute commit history query: %w", err)
	}
	rl := q.RateLimit.snapshot()
	if q.Repository == nil {
		return nil, rl, fmt.Errorf("%w: repository %s/%s not found", ErrLookup, owner, name)
	}
	if q.Repository.DefaultBranchRef == nil {
		return nil, rl, fmt.Errorf("%w: repository %s/%s has no default branch", ErrLookup, owner, name)
	}

	history := q.Repository.DefaultBranchRef.Target.Commit.History
	edges := make([]CommitEdge, 0, len(history.Edges))
	for _, edge := range history.Edges {
		node := edge.Node
		ce := CommitEdge{
			CommittedDate:   node.CommittedDate.Time,
			CommitURL:       uriString(node.CommitURL),
			CommittedViaWeb: bool(node.CommittedViaWeb),
			MessageHeadline: string(node.MessageHeadline),
		}
		if node.Author != nil {
			ce.AuthorName = string(node.Author.Name)
			ce.AuthorEmail = string(node.Author.Email)
			if node.Author.User != nil {
				ce.AuthorLogin = string(node.Author.User.Login)
				ce.AuthorID = idString(node.Author.User.ID)
				ce.HasUser = true
			}
		}
		edges = append(edges, ce)
	}
	if total := int(history.TotalCount); total > len(edges) {
		g.logger.Printf("Commit history of %s/%s truncated: first page returned %d of %d commits.", owner, name, len(edges), total)
	}
	g.logger.Printf("Fetched %d commits from %s/%s (rate limit remaining: %d).", len(edges), owner, name, rl.Remaining)
	return edges, rl, nil
}

func (b rateLimitBlock) snapshot() RateLimit {
	return RateLimit{
		Limit:     int(b.Limit),
		Cost:      int(b.Cost),
		Remaining: int(b.Remaining),
		ResetAt:   b.ResetAt.Time,
	}
}

func idString(id githubv4.ID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%v", id)
}

func uriString(u githubv4.URI) string {
	if u.URL == nil {
		return ""
	}
	return u.URL.String()
}
