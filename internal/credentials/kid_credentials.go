package credentials

import (
	"crypto/rand"
	"math/big"
)

// GenerateKidPIN generates a random 4-digit PIN for a kid profile
func GenerateKidPIN() (string, error) {
	digits := "0123456789"
	pin := make([]byte, 4)

	for i := 0; i < 4; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		pin[i] = digits[num.Int64()]
	}

	return string(pin), nil
}
