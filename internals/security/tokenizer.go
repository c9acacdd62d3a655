package security

import (
	"time"

	"connwatch/config"
	"connwatch/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type TokenService struct {
	secret    string
	expiryMin int
	clock     clockwork.Clock
}

func NewTokenService(authCfg *config.AuthConfig) *TokenService {
	return &TokenService{
		secret:    authCfg.Secret,
		expiryMin: authCfg.ExpiryMin,
		clock:     clockwork.NewRealClock(),
	}
}

// Enabled reports whether a signing secret is configured. Without one no
// token is ever issued or accepted.
func (ts *TokenService) Enabled() bool {
	return ts.secret != ""
}

func (ts *TokenService) GenerateAccessToken(payload RequestClaims) (string, error) {
	const op string = "service.token.generate_access_token"

	if !ts.Enabled() {
		return "", &apperror.Error{
			Kind:    apperror.Unavailable,
			Op:      op,
			Message: "authentication is not configured",
		}
	}

	now := ts.clock.Now()
	expiryTime := now.Add(time.Duration(ts.expiryMin) * time.Minute)

	payload.ExpiresAt = jwt.NewNumericDate(expiryTime)
	payload.IssuedAt = jwt.NewNumericDate(now)
	payload.ID = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signedToken, err := token.SignedString([]byte(ts.secret))
	if err != nil {
		return "", apperror.New(apperror.Internal, op, err)
	}

	return signedToken, nil
}

func (ts *TokenService) ValidateAccessToken(accessToken string) (*RequestClaims, error) {
	const op string = "service.token.validate_access_token"

	if !ts.Enabled() {
		return nil, &apperror.Error{
			Kind:    apperror.Unauthorised,
			Op:      op,
			Message: "authentication is not configured",
		}
	}

	claims := &RequestClaims{}

	token, err := jwt.ParseWithClaims(
		accessToken,
		claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(ts.secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(ts.clock.Now),
	)

	if err != nil || !token.Valid {
		return nil, &apperror.Error{
			Kind:    apperror.Unauthorised,
			Op:      op,
			Message: "invalid token",
		}
	}

	return claims, nil
}
