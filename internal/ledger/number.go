package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	accountNumberLength = 10
	numberAttempts      = 5
)

// newAccountNumber generates a random 10-digit account number with a non-zero
// leading digit. Uniqueness is the caller's responsibility.
func newAccountNumber() (string, error) {
	digits := make([]byte, accountNumberLength)
	for i := range digits {
		limit := int64(10)
		if i == 0 {
			limit = 9
		}
		n, err := rand.Int(rand.Reader, big.NewInt(limit))
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}
		d := n.Int64()
		if i == 0 {
			d++
		}
		digits[i] = byte('0' + d)
	}
	return string(digits), nil
}
