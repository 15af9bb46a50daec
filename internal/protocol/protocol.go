// Package protocol implements the line-oriented wire protocol: parsing one
// request line into a typed request, and rendering a typed reply back to the
// exact text clients expect.
package protocol

import (
	"errors"
	"strings"
)

// MaxFieldLen bounds every field of a request. Enforced explicitly at parse
// time, not by buffer truncation.
const MaxFieldLen = 511

var ErrMalformedRequest = errors.New("malformed request")

// Request is one decoded command. Fields are single tokens; whitespace inside
// a field is not representable on the wire.
type Request interface {
	// Keyword returns the command keyword, safe to log.
	Keyword() string
}

type RegisterRequest struct {
	Username string
	Password string
}

type LoginRequest struct {
	Username string
	Password string
}

type VoteRequest struct {
	Username  string
	Candidate string
}

type ResultsRequest struct {
	AdminPassword string
}

func (RegisterRequest) Keyword() string { return "REGISTER" }
func (LoginRequest) Keyword() string    { return "LOGIN" }
func (VoteRequest) Keyword() string     { return "VOTE" }
func (ResultsRequest) Keyword() string  { return "RESULTS" }

// Parse decodes a single request line. Keywords are case-sensitive. A missing
// field, an unknown keyword or an oversized field yields ErrMalformedRequest.
// Tokens past the last required field are ignored.
func Parse(line string) (Request, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, ErrMalformedRequest
	}
	fields, err := takeFields(tokens, requiredFields(tokens[0]))
	if err != nil {
		return nil, err
	}
	switch tokens[0] {
	case "REGISTER":
		return RegisterRequest{Username: fields[0], Password: fields[1]}, nil
	case "LOGIN":
		return LoginRequest{Username: fields[0], Password: fields[1]}, nil
	case "VOTE":
		return VoteRequest{Username: fields[0], Candidate: fields[1]}, nil
	case "RESULTS":
		return ResultsRequest{AdminPassword: fields[0]}, nil
	}
	return nil, ErrMalformedRequest
}

func requiredFields(keyword string) int {
	switch keyword {
	case "REGISTER", "LOGIN", "VOTE":
		return 2
	case "RESULTS":
		return 1
	}
	return -1
}

func takeFields(tokens []string, n int) ([]string, error) {
	if n < 0 || len(tokens) < n+1 {
		return nil, ErrMalformedRequest
	}
	fields := tokens[1 : n+1]
	for _, f := range fields {
		if len(f) > MaxFieldLen {
			return nil, ErrMalformedRequest
		}
	}
	return fields, nil
}
