package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword digests pw with a per-call random salt. cost outside the
// bcrypt range falls back to the library default.
func HashPassword(pw string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

// CheckPassword compares in constant time regardless of where a mismatch
// occurs.
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
