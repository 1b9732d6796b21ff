package auth

import "golang.org/x/crypto/bcrypt"

// BcryptCost is the work factor for password hashing.
const BcryptCost = 10

// dummyHash is a hash of a throwaway password, compared against when a
// login names an unknown username. Without it the fast not-found path
// would let response latency reveal which usernames exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("invopay-dummy-credential"), BcryptCost)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches hash. A malformed hash
// fails closed rather than erroring the caller.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// DummyCompare burns a bcrypt comparison of the same cost as a real login
// check. Called on unknown usernames so both failure paths take
// comparable time.
func DummyCompare(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plaintext))
}
