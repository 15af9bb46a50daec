package protocol

import (
	"fmt"
	"strings"

	"gitlab.com/ranfdev/scrutinio/internal/models"
)

type Outcome int

const (
	OutcomeInvalid Outcome = iota
	OutcomeRegistered
	OutcomeDuplicateUsername
	OutcomeLoginOK
	OutcomeUnknownUser
	OutcomeInvalidPassword
	OutcomeVoteRecorded
	OutcomeVoteRejected
	OutcomeResults
	OutcomeUnauthorized
	OutcomeError
)

// Reply is the tagged outcome of handling one request. Only OutcomeLoginOK
// reads Candidates and only OutcomeResults reads Results; the other variants
// carry no payload.
type Reply struct {
	Outcome    Outcome
	Candidates []string
	Results    []models.Candidate
}

// Encode renders the reply as wire text. Single-line replies carry no
// trailing newline; the results block is newline-terminated per line. No
// code path emits a digest or secret.
func (r Reply) Encode() string {
	switch r.Outcome {
	case OutcomeRegistered:
		return "Registration successful."
	case OutcomeDuplicateUsername:
		return "Username already exists."
	case OutcomeLoginOK:
		return fmt.Sprintf("Login success. Candidates: %s.", strings.Join(r.Candidates, ", "))
	case OutcomeUnknownUser:
		return "Username not found."
	case OutcomeInvalidPassword:
		return "Invalid password."
	case OutcomeVoteRecorded:
		return "Vote successful."
	case OutcomeVoteRejected:
		return "Vote failed or already voted."
	case OutcomeResults:
		var b strings.Builder
		b.WriteString("--- Results ---\n")
		for _, c := range r.Results {
			fmt.Fprintf(&b, "%s: %d votes\n", c.Name, c.Votes)
		}
		return b.String()
	case OutcomeUnauthorized:
		return "Unauthorized access."
	case OutcomeError:
		return "Error processing request."
	}
	return "Invalid request."
}
