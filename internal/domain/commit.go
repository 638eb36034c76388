package domain

import "time"

// dayLayout is the calendar-day key format used for grouping.
const dayLayout = "2006-01-02"

// NormalizedCommit is a commit reduced to the two fields the report needs:
// when it happened and who it belongs to. Login is either the linked GitHub
// login or a synthesized "Name (email)" identity for unlinked authors.
type NormalizedCommit struct {
	CommittedDate time.Time
	Login         string
}

// Day returns the commit's calendar day in the timestamp's own offset.
// No timezone conversion is performed.
func (c NormalizedCommit) Day() string {
	return c.CommittedDate.Format(dayLayout)
}

// ContributorDay is the grouping key of the report: one contributor on one
// calendar day.
type ContributorDay struct {
	Login string `json:"login"`
	Day   string `json:"day"`
}

// DailyCount maps each (contributor, day) group to its commit count.
// Iteration order is unspecified; ordering for display is the caller's concern.
type DailyCount map[ContributorDay]int

// Total returns the number of commits across all groups.
func (d DailyCount) Total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}
