package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	digitChars  = "23456789"
	symbolChars = "!@#$%^&*-_=+?"
)

// MinRandomPasswordLength leaves room for one character of every class.
const MinRandomPasswordLength = 12

var ErrPasswordLength = errors.New("random password must be at least 12 characters")

// RandomPassword returns a password of the given length containing at least
// one upper case letter, lower case letter, digit and symbol. Look-alike
// characters (0/O, 1/l/I) are excluded since the result is read off a log.
func RandomPassword(length int) (string, error) {
	if length < MinRandomPasswordLength {
		return "", ErrPasswordLength
	}

	classes := []string{upperChars, lowerChars, digitChars, symbolChars}
	pool := upperChars + lowerChars + digitChars + symbolChars

	result := make([]byte, length)
	for i := range result {
		charset := pool
		if i < len(classes) {
			charset = classes[i]
		}
		ch, err := randChar(charset)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	if err := secureShuffle(result); err != nil {
		return "", err
	}
	return string(result), nil
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}

// secureShuffle performs a Fisher-Yates shuffle using crypto/rand.
func secureShuffle(data []byte) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		data[i], data[j.Int64()] = data[j.Int64()], data[i]
	}
	return nil
}
