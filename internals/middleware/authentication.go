package middle

/**
- Work of this file:
	- Validates the operator token
	- Stores the caller in context
	- Exposes a helper to retrieve it
**/

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connwatch/internals/security"
	"connwatch/pkg/apperror"
	"connwatch/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
)

type callerCtxKeyType struct{}

var callerCtxKey = callerCtxKeyType{}

type AuthenticatedCaller struct {
	Subject string
	Role    string
}

type TokenValidator interface {
	ValidateAccessToken(accessToken string) (*security.RequestClaims, error)
}

type AuthMiddleware struct {
	tokenSvc TokenValidator
}

func NewAuthMiddleware(tokenSvc TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: tokenSvc,
	}
}

func (a *AuthMiddleware) Handle(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := middleware.GetReqID(ctx)

		token, err := a.extractBearerToken(r)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, err.Error())
			return
		}

		claims, err := a.tokenSvc.ValidateAccessToken(token)
		if err != nil {
			utils.FromAppError(w, reqID, err)
			return
		}

		if claims.Subject == "" || claims.Role == "" {
			utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "caller is unauthorised")
			return
		}

		caller := &AuthenticatedCaller{
			Subject: claims.Subject,
			Role:    claims.Role,
		}

		newCtx := context.WithValue(ctx, callerCtxKey, caller)
		next.ServeHTTP(w, r.WithContext(newCtx))
	}

	return http.HandlerFunc(fn)
}

func (_ *AuthMiddleware) extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")

	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header")
	}

	return parts[1], nil
}

func CallerFromContext(ctx context.Context) (*AuthenticatedCaller, bool) {
	caller, ok := ctx.Value(callerCtxKey).(*AuthenticatedCaller)
	return caller, ok
}
