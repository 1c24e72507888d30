package auth

import (
	"crypto/subtle"

	"github.com/alexedwards/argon2id"
)

// argon2idParams mirrors OWASP's minimum recommendation for Argon2id.
var argon2idParams = &argon2id.Params{
	Memory:      47 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// HashAdminToken returns an Argon2id PHC-format hash of an admin bearer
// token, for operators who'd rather store admin.token_hash than the
// cleartext admin.token.
func HashAdminToken(token string) (string, error) {
	return argon2id.CreateHash(token, argon2idParams)
}

// VerifyAdminToken checks presented against either a cleartext expected
// token (constant-time compare) or, when tokenHash is non-empty, an
// Argon2id PHC hash (tokenHash takes precedence). The argon2id library
// panics on malformed PHC strings with invalid parameters; that panic is
// recovered and turned into a non-match so a corrupt config can never
// crash the admin plane.
func VerifyAdminToken(presented, expected, tokenHash string) bool {
	if tokenHash != "" {
		return safeArgon2Compare(presented, tokenHash)
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

func safeArgon2Compare(presented, hash string) (match bool) {
	defer func() {
		if recover() != nil {
			match = false
		}
	}()
	ok, err := argon2id.ComparePasswordAndHash(presented, hash)
	if err != nil {
		return false
	}
	return ok
}
