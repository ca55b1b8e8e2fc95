package identity

import "golang.org/x/crypto/bcrypt"

// hashCost pins the bcrypt work factor. Raising it only affects new hashes.
const hashCost = 10

// HashPassword derives a salted one-way hash of the password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), hashCost)
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
