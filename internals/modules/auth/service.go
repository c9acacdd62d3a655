package auth

import (
	"context"

	"connwatch/internals/security"
	"connwatch/pkg/apperror"

	"github.com/rs/zerolog"
)

type TokenIssuer interface {
	GenerateAccessToken(payload security.RequestClaims) (string, error)
}

// Service exchanges the operator password for an admin token.
type Service struct {
	passwordHash string
	tokens       TokenIssuer
	logger       *zerolog.Logger
}

func NewService(passwordHash string, tokens TokenIssuer, logger *zerolog.Logger) *Service {
	return &Service{
		passwordHash: passwordHash,
		tokens:       tokens,
		logger:       logger,
	}
}

func (s *Service) IssueToken(ctx context.Context, password string) (string, error) {
	const op string = "service.auth.issue_token"

	if s.passwordHash == "" {
		return "", &apperror.Error{
			Kind:    apperror.Unavailable,
			Op:      op,
			Message: "operator login is not configured",
		}
	}

	ok, err := security.ComparePassword(password, s.passwordHash)
	if err != nil {
		s.logger.Error().Err(err).Str("op", op).Msg("stored password hash is unusable")
		return "", apperror.New(apperror.Internal, op, err).WithMessage("internal server error")
	}
	if !ok {
		return "", &apperror.Error{
			Kind:    apperror.Unauthorised,
			Op:      op,
			Message: "invalid credentials",
		}
	}

	return s.tokens.GenerateAccessToken(security.RequestClaims{
		Subject: security.OperatorSubject,
		Role:    security.RoleAdmin,
	})
}
