package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/ranfdev/scrutinio/internal/models"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want Request
	}{
		{"REGISTER alice pw1", RegisterRequest{Username: "alice", Password: "pw1"}},
		{"LOGIN bob pw", LoginRequest{Username: "bob", Password: "pw"}},
		{"VOTE carol Alice", VoteRequest{Username: "carol", Candidate: "Alice"}},
		{"RESULTS admin123", ResultsRequest{AdminPassword: "admin123"}},
		// extra whitespace between tokens is tolerated
		{"REGISTER   alice   pw1", RegisterRequest{Username: "alice", Password: "pw1"}},
		// tokens past the required fields are ignored
		{"VOTE carol Alice extra", VoteRequest{Username: "carol", Candidate: "Alice"}},
		{"RESULTS admin123 junk", ResultsRequest{AdminPassword: "admin123"}},
	}
	for _, c := range cases {
		got, err := Parse(c.line)
		require.NoError(t, err, c.line)
		require.Equal(t, c.want, got, c.line)
	}
}

func TestParseMalformed(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"FOO bar",
		"register alice pw1", // keywords are case-sensitive
		"REGISTER",
		"REGISTER alice",
		"LOGIN bob",
		"VOTE carol",
		"RESULTS",
		"REGISTERX alice pw1",
	}
	for _, line := range lines {
		_, err := Parse(line)
		require.ErrorIs(t, err, ErrMalformedRequest, "%q", line)
	}
}

func TestParseFieldLengthBound(t *testing.T) {
	require := require.New(t)
	ok := strings.Repeat("a", MaxFieldLen)
	_, err := Parse("REGISTER " + ok + " pw")
	require.NoError(err)

	long := strings.Repeat("a", MaxFieldLen+1)
	_, err = Parse("REGISTER " + long + " pw")
	require.ErrorIs(err, ErrMalformedRequest)
	_, err = Parse("REGISTER alice " + long)
	require.ErrorIs(err, ErrMalformedRequest)
	_, err = Parse("RESULTS " + long)
	require.ErrorIs(err, ErrMalformedRequest)
}

func TestReplyEncode(t *testing.T) {
	cases := []struct {
		reply Reply
		want  string
	}{
		{Reply{Outcome: OutcomeRegistered}, "Registration successful."},
		{Reply{Outcome: OutcomeDuplicateUsername}, "Username already exists."},
		{Reply{Outcome: OutcomeLoginOK, Candidates: []string{"Alice", "Bob", "Charlie"}},
			"Login success. Candidates: Alice, Bob, Charlie."},
		{Reply{Outcome: OutcomeUnknownUser}, "Username not found."},
		{Reply{Outcome: OutcomeInvalidPassword}, "Invalid password."},
		{Reply{Outcome: OutcomeVoteRecorded}, "Vote successful."},
		{Reply{Outcome: OutcomeVoteRejected}, "Vote failed or already voted."},
		{Reply{Outcome: OutcomeUnauthorized}, "Unauthorized access."},
		{Reply{Outcome: OutcomeError}, "Error processing request."},
		{Reply{Outcome: OutcomeInvalid}, "Invalid request."},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.reply.Encode())
	}
}

func TestReplyEncodeResults(t *testing.T) {
	r := Reply{
		Outcome: OutcomeResults,
		Results: []models.Candidate{
			{Name: "Alice", Votes: 2},
			{Name: "Bob", Votes: 0},
			{Name: "Charlie", Votes: 1},
		},
	}
	want := "--- Results ---\nAlice: 2 votes\nBob: 0 votes\nCharlie: 1 votes\n"
	require.Equal(t, want, r.Encode())
}
