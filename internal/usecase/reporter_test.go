package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ou-cs3560/team-commits/internal/domain"
	"github.com/ou-cs3560/team-commits/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchTeamMembers(ctx context.Context, org, teamSlug string) ([]gateway.Member, gateway.RateLimit, error) {
	args := m.Called(ctx, org, teamSlug)
	var members []gateway.Member
	if args.Get(0) != nil {
		members = args.Get(0).([]gateway.Member)
	}
	return members, args.Get(1).(gateway.RateLimit), args.Error(2)
}

func (m *mockFetcher) FetchCommitHistory(ctx context.Context, owner, name string, since, until time.Time) ([]gateway.CommitEdge, gateway.RateLimit, error) {
	args := m.Called(ctx, owner, name, since, until)
	var edges []gateway.CommitEdge
	if args.Get(0) != nil {
		edges = args.Get(0).([]gateway.CommitEdge)
	}
	return edges, args.Get(1).(gateway.RateLimit), args.Error(2)
}

func newTestReporter(fetcher gateway.Fetcher) *Reporter {
	logger := log.New(io.Discard, "", 0)
	return NewReporter(fetcher, logger, time.Millisecond)
}

func TestReporter_Run_EndToEnd(t *testing.T) {
	milestone := domain.Milestone{
		Name:  "milestone-1",
		Begin: mustParse(t, "2023-03-19T00:00:00+00:00"),
		End:   mustParse(t, "2023-04-04T23:59:00+00:00"),
	}
	team := domain.Team{Slug: "team-1", RepoPath: "OU-CS3560/team-1"}
	rl := gateway.RateLimit{Limit: 5000, Cost: 1, Remaining: 4999}

	edges := []gateway.CommitEdge{
		{CommittedDate: mustParse(t, "2023-03-20T09:00:00Z"), AuthorLogin: "alice", HasUser: true},
		{CommittedDate: mustParse(t, "2023-03-20T17:30:00Z"), AuthorLogin: "alice", HasUser: true},
		{CommittedDate: mustParse(t, "2023-03-21T12:00:00Z"), AuthorName: "Jane Doe", AuthorEmail: "jane@example.com"},
	}

	fetcher := new(mockFetcher)
	fetcher.On("FetchCommitHistory", mock.Anything, "OU-CS3560", "team-1", milestone.Begin, milestone.End).
		Return(edges, rl, nil)

	reports, err := newTestReporter(fetcher).Run(context.Background(), milestone, []domain.Team{team}, ExclusionSet{})

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Failed())
	assert.Equal(t, rl, reports[0].RateLimit)
	assert.Equal(t, domain.DailyCount{
		{Login: "alice", Day: "2023-03-20"}:                       2,
		{Login: "Jane Doe (jane@example.com)", Day: "2023-03-21"}: 1,
	}, reports[0].Counts)
	fetcher.AssertExpectations(t)
}

func TestReporter_Run_MalformedRepoPathSkipsNetwork(t *testing.T) {
	milestone := domain.Milestone{
		Name:  "milestone-1",
		Begin: mustParse(t, "2023-03-19T00:00:00Z"),
		End:   mustParse(t, "2023-04-04T23:59:00Z"),
	}
	team := domain.Team{Slug: "team-broken", RepoPath: "invalid-no-slash"}

	fetcher := new(mockFetcher)

	reports, err := newTestReporter(fetcher).Run(context.Background(), milestone, []domain.Team{team}, ExclusionSet{})

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Failed())
	assert.ErrorContains(t, reports[0].Err, "invalid-no-slash")
	// No query may be attempted for a team that fails configuration checks.
	fetcher.AssertNotCalled(t, "FetchCommitHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReporter_Run_IsolatesFailingTeams(t *testing.T) {
	milestone := domain.Milestone{
		Name:  "milestone-1",
		Begin: mustParse(t, "2023-03-19T00:00:00Z"),
		End:   mustParse(t, "2023-04-04T23:59:00Z"),
	}
	teams := []domain.Team{
		{Slug: "team-1", RepoPath: "OU-CS3560/team-1"},
		{Slug: "team-2", RepoPath: "OU-CS3560/team-2"},
	}
	rl := gateway.RateLimit{Remaining: 4998}

	fetcher := new(mockFetcher)
	fetcher.On("FetchCommitHistory", mock.Anything, "OU-CS3560", "team-1", mock.Anything, mock.Anything).
		Return(nil, gateway.RateLimit{}, errors.New("transport failed after 3 attempts"))
	fetcher.On("FetchCommitHistory", mock.Anything, "OU-CS3560", "team-2", mock.Anything, mock.Anything).
		Return([]gateway.CommitEdge{
			{CommittedDate: mustParse(t, "2023-03-22T10:00:00Z"), AuthorLogin: "bob", HasUser: true},
		}, rl, nil)

	reports, err := newTestReporter(fetcher).Run(context.Background(), milestone, teams, ExclusionSet{})

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Failed())
	assert.ErrorContains(t, reports[0].Err, "team-1")
	assert.False(t, reports[1].Failed())
	assert.Equal(t, domain.DailyCount{{Login: "bob", Day: "2023-03-22"}: 1}, reports[1].Counts)
	fetcher.AssertExpectations(t)
}

func TestReporter_Run_RejectsInvertedMilestone(t *testing.T) {
	milestone := domain.Milestone{
		Name:  "backwards",
		Begin: mustParse(t, "2023-04-04T00:00:00Z"),
		End:   mustParse(t, "2023-03-19T00:00:00Z"),
	}

	fetcher := new(mockFetcher)

	reports, err := newTestReporter(fetcher).Run(context.Background(), milestone, []domain.Team{{Slug: "team-1", RepoPath: "a/b"}}, ExclusionSet{})

	assert.Error(t, err)
	assert.Nil(t, reports)
	fetcher.AssertNotCalled(t, "FetchCommitHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReporter_Run_StopsOnCancelledContext(t *testing.T) {
	milestone := domain.Milestone{
		Name:  "milestone-1",
		Begin: mustParse(t, "2023-03-19T00:00:00Z"),
		End:   mustParse(t, "2023-04-04T23:59:00Z"),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := new(mockFetcher)

	reports, err := newTestReporter(fetcher).Run(ctx, milestone, []domain.Team{{Slug: "team-1", RepoPath: "a/b"}}, ExclusionSet{})

	assert.Error(t, err)
	assert.Empty(t, reports)
	fetcher.AssertNotCalled(t, "FetchCommitHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReporter_TeamRoster(t *testing.T) {
	rl := gateway.RateLimit{Limit: 5000, Cost: 1, Remaining: 4997}
	fetcher := new(mockFetcher)
	fetcher.On("FetchTeamMembers", mock.Anything, "OU-CS3560", "team-1").
		Return([]gateway.Member{{Login: "ta-bot"}, {Login: "alice"}}, rl, nil)

	members, gotRL, err := newTestReporter(fetcher).TeamRoster(context.Background(), "OU-CS3560", "team-1", NewExclusionSet([]string{"ta-bot"}))

	require.NoError(t, err)
	assert.Equal(t, []gateway.Member{{Login: "alice"}}, members)
	assert.Equal(t, rl, gotRL)
	fetcher.AssertExpectations(t)
}
