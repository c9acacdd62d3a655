package utils

import (
	"context"
	"errors"

	"connwatch/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// WrapRepoError turns a pgx error from op into an *apperror.Error. Only
// query shapes that select a single row can produce NotFound.
func WrapRepoError(op string, err error, log *zerolog.Logger) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &apperror.Error{
			Kind:    apperror.RequestTimeout,
			Op:      op,
			Message: "request cancelled or timed out",
		}

	case errors.Is(err, pgx.ErrNoRows):
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "incident not found",
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		log.Warn().Str("op", op).Err(err).Msg("postgres unreachable")

		return &apperror.Error{
			Kind:    apperror.Dependency,
			Op:      op,
			Message: "incident store unavailable",
			Err:     err,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		log.Error().
			Str("op", op).
			Str("pg_code", pgErr.Code).
			Str("pg_constraint", pgErr.ConstraintName).
			Str("pg_table", pgErr.TableName).
			Str("pg_detail", pgErr.Detail).
			Err(err).
			Msg("postgres database error")

		return &apperror.Error{
			Kind:    apperror.DatabaseErr,
			Op:      op,
			Message: "internal server error",
			Err:     err,
		}
	}

	return &apperror.Error{
		Kind:    apperror.Internal,
		Op:      op,
		Message: "internal server error",
		Err:     err,
	}
}
