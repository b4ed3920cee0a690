package util

import (
	"crypto/rand"
	"math/big"
)

var ten = big.NewInt(10)

// OTP returns a code of the given number of decimal digits. Leading zeros are
// kept, so every code has exactly digits characters.
func OTP(digits int) (string, error) {
	b := make([]byte, digits)
	for i := range b {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b[i] = byte('0' + d.Int64())
	}
	return string(b), nil
}
