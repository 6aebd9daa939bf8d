package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateRandomString generates a cryptographically secure random string
// using the provided charset and length
func GenerateRandomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(fmt.Sprintf("failed to generate random string: %v", err))
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// GenerateOTPCode generates a cryptographically secure numeric one-time code.
// Each digit is drawn uniformly, so codes are not predictable from prior ones.
func GenerateOTPCode(length int) string {
	const charset = "0123456789"
	return GenerateRandomString(length, charset)
}
