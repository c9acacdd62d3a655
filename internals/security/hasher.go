package security

import (
	"github.com/alexedwards/argon2id"
)

// HashPassword returns the argon2id hash stored as auth.admin_password_hash.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// ComparePassword errors only when hash is not a valid argon2id hash.
func ComparePassword(password, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, hash)
}
