package server

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gitlab.com/ranfdev/scrutinio/internal/db"
	"gitlab.com/ranfdev/scrutinio/internal/models"
	"gitlab.com/ranfdev/scrutinio/internal/passwd"
	"gitlab.com/ranfdev/scrutinio/internal/protocol"
)

// Store is the slice of the vote store the handler needs.
type Store interface {
	CreateUser(ctx context.Context, username string, passwordHash string) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	RecordVote(ctx context.Context, username string, candidate string) error
	Tally(ctx context.Context) ([]models.Candidate, error)
}

// Handler executes one decoded request against the store. It is stateless
// across requests: there is no session token, every request authenticates on
// its own. Note the protocol consequence: VOTE proves only knowledge of the
// username, not of the password supplied at LOGIN.
type Handler struct {
	store     Store
	adminHash string
	logger    zerolog.Logger
}

func NewHandler(store Store, adminSecret string, logger zerolog.Logger) *Handler {
	return &Handler{
		store:     store,
		adminHash: passwd.Digest(adminSecret),
		logger:    logger,
	}
}

// Handle parses and executes one request line. Every path yields a reply;
// nothing propagates past this boundary.
func (h *Handler) Handle(ctx context.Context, line string) protocol.Reply {
	req, err := protocol.Parse(line)
	if err != nil {
		return protocol.Reply{Outcome: protocol.OutcomeInvalid}
	}
	h.logger.Debug().Str("command", req.Keyword()).Msg("Handling request")

	switch req := req.(type) {
	case protocol.RegisterRequest:
		return h.register(ctx, req)
	case protocol.LoginRequest:
		return h.login(ctx, req)
	case protocol.VoteRequest:
		return h.vote(ctx, req)
	case protocol.ResultsRequest:
		return h.results(ctx, req)
	}
	return protocol.Reply{Outcome: protocol.OutcomeInvalid}
}

func (h *Handler) register(ctx context.Context, req protocol.RegisterRequest) protocol.Reply {
	err := h.store.CreateUser(ctx, req.Username, passwd.Digest(req.Password))
	if errors.Is(err, db.ErrDuplicateUsername) {
		return protocol.Reply{Outcome: protocol.OutcomeDuplicateUsername}
	}
	if err != nil {
		return h.storeError(err, "register")
	}
	return protocol.Reply{Outcome: protocol.OutcomeRegistered}
}

func (h *Handler) login(ctx context.Context, req protocol.LoginRequest) protocol.Reply {
	user, err := h.store.GetUser(ctx, req.Username)
	if errors.Is(err, db.ErrUnknownUser) {
		return protocol.Reply{Outcome: protocol.OutcomeUnknownUser}
	}
	if err != nil {
		return h.storeError(err, "login")
	}
	if !passwd.Verify(user.PasswordHash, req.Password) {
		return protocol.Reply{Outcome: protocol.OutcomeInvalidPassword}
	}

	// The candidate list on login is informational only; it does not open a
	// session.
	tally, err := h.store.Tally(ctx)
	if err != nil {
		return h.storeError(err, "login")
	}
	names := make([]string, len(tally))
	for i, c := range tally {
		names[i] = c.Name
	}
	return protocol.Reply{Outcome: protocol.OutcomeLoginOK, Candidates: names}
}

func (h *Handler) vote(ctx context.Context, req protocol.VoteRequest) protocol.Reply {
	err := h.store.RecordVote(ctx, req.Username, req.Candidate)
	if err != nil {
		// Unknown user, unknown candidate and repeat votes collapse into one
		// message so the reply doesn't leak which precondition failed.
		if !isVoteDomainErr(err) {
			h.logger.Error().Err(err).Msg("Store failure on vote")
		}
		return protocol.Reply{Outcome: protocol.OutcomeVoteRejected}
	}
	return protocol.Reply{Outcome: protocol.OutcomeVoteRecorded}
}

func (h *Handler) results(ctx context.Context, req protocol.ResultsRequest) protocol.Reply {
	if !passwd.Verify(h.adminHash, req.AdminPassword) {
		return protocol.Reply{Outcome: protocol.OutcomeUnauthorized}
	}
	tally, err := h.store.Tally(ctx)
	if err != nil {
		return h.storeError(err, "results")
	}
	return protocol.Reply{Outcome: protocol.OutcomeResults, Results: tally}
}

func (h *Handler) storeError(err error, op string) protocol.Reply {
	h.logger.Error().Err(err).Str("op", op).Msg("Store failure")
	return protocol.Reply{Outcome: protocol.OutcomeError}
}

func isVoteDomainErr(err error) bool {
	return errors.Is(err, db.ErrUnknownUser) ||
		errors.Is(err, db.ErrUnknownCandidate) ||
		errors.Is(err, db.ErrAlreadyVoted)
}
