package db

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"gitlab.com/ranfdev/scrutinio/internal/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ErrDuplicateUsername = errors.New("username already exists")
var ErrUnknownUser = errors.New("unknown user")
var ErrUnknownCandidate = errors.New("unknown candidate")
var ErrAlreadyVoted = errors.New("user has already voted")

// VoteStore holds the connection pool and exposes the atomic operations of
// the voting domain. Every public method takes only structured field values;
// no raw query text crosses this boundary.
type VoteStore struct {
	db *pgxpool.Pool
}

func Connect(ctx context.Context, config *models.EnvConfig) (*VoteStore, error) {
	pool, err := pgxpool.Connect(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("Failed to connect to postgres: %w", err)
	}
	return &VoteStore{db: pool}, nil
}

func (s *VoteStore) Close() {
	s.db.Close()
}

func (s *VoteStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func execTx(ctx context.Context, db *pgxpool.Pool, txFunc func(context.Context, pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	err = txFunc(ctx, tx)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	err = tx.Commit(ctx)
	return err
}

func isDomainErr(err error) bool {
	return errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrUnknownUser) ||
		errors.Is(err, ErrUnknownCandidate) ||
		errors.Is(err, ErrAlreadyVoted)
}

// withRetry runs one atomic operation, retrying once on transient failure.
// Domain errors are final and never retried. The operation must be a single
// transaction so a retry never observes a partial state transition.
func withRetry(ctx context.Context, op func(context.Context) error) error {
	err := op(ctx)
	if err == nil || isDomainErr(err) || ctx.Err() != nil {
		return err
	}
	return op(ctx)
}
