package services

import (
	"crypto/rand"
	"math/big"
)

// No 0/O, 1/I/L: codes are read aloud and copied from printed slips.
const pickupAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const pickupCodeLength = 6

func NewPickupCode() (string, error) {
	max := big.NewInt(int64(len(pickupAlphabet)))
	b := make([]byte, pickupCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = pickupAlphabet[n.Int64()]
	}
	return string(b), nil
}
