package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"gitlab.com/ranfdev/scrutinio/internal/models"
)

// CreateUser inserts a new user row. The username is the primary key, so a
// duplicate registration fails on the constraint without touching the
// existing row.
func (s *VoteStore) CreateUser(ctx context.Context, username string, passwordHash string) error {
	return withRetry(ctx, func(ctx context.Context) error {
		sql, args, _ := psql.
			Insert("users").
			Columns("username", "password_hash", "voted").
			Values(username, passwordHash, false).
			ToSql()

		_, err := s.db.Exec(ctx, sql, args...)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_pkey" {
			return ErrDuplicateUsername
		}
		return err
	})
}

func (s *VoteStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	sql, args, _ := psql.
		Select("username", "password_hash", "voted").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()

	err := withRetry(ctx, func(ctx context.Context) error {
		err := pgxscan.Get(ctx, s.db, user, sql, args...)
		if pgxscan.NotFound(err) {
			return ErrUnknownUser
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RecordVote marks the user as voted and increments the candidate tally in
// one transaction. The SELECT FOR UPDATE on the user row serializes
// concurrent votes by the same user: of two racing calls, the second blocks
// until the first commits and then sees voted = true.
func (s *VoteStore) RecordVote(ctx context.Context, username string, candidate string) error {
	return withRetry(ctx, func(ctx context.Context) error {
		return execTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
			sql, args, _ := psql.
				Select("voted").
				From("users").
				Where(sq.Eq{"username": username}).
				Suffix("FOR UPDATE").
				ToSql()

			var voted bool
			err := tx.QueryRow(ctx, sql, args...).Scan(&voted)
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUnknownUser
			} else if err != nil {
				return err
			}
			if voted {
				return ErrAlreadyVoted
			}

			sql, args, _ = psql.
				Update("candidates").
				Set("votes", sq.Expr("votes + 1")).
				Where(sq.Eq{"name": candidate}).
				ToSql()

			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				// Outside the fixed candidate set. Rolling back also undoes
				// nothing here, but keeps the invariant obvious.
				return ErrUnknownCandidate
			}

			sql, args, _ = psql.
				Update("users").
				Set("voted", true).
				Where(sq.Eq{"username": username}).
				ToSql()

			_, err = tx.Exec(ctx, sql, args...)
			return err
		})
	})
}

// Tally returns every candidate with its vote count, in seeding order rather
// than count order.
func (s *VoteStore) Tally(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	sql, args, _ := psql.
		Select("name", "votes").
		From("candidates").
		OrderBy("position").
		ToSql()

	err := withRetry(ctx, func(ctx context.Context) error {
		candidates = candidates[:0]
		return pgxscan.Select(ctx, s.db, &candidates, sql, args...)
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// EnsureCandidates seeds the fixed candidate set at zero votes. Idempotent:
// rows already present keep their counts, so restarting the server never
// resets a tally.
func (s *VoteStore) EnsureCandidates(ctx context.Context, names []string) error {
	return withRetry(ctx, func(ctx context.Context) error {
		return execTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
			for i, name := range names {
				sql, args, _ := psql.
					Insert("candidates").
					Columns("name", "votes", "position").
					Values(name, 0, i).
					Suffix("ON CONFLICT (name) DO NOTHING").
					ToSql()

				if _, err := tx.Exec(ctx, sql, args...); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
