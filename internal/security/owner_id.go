package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	AnonymousOwnerPrefix = "anon-"

	ownerIDAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"
	ownerIDLength   = 20
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// NewAnonymousOwnerID returns an unguessable owner id for callers that have
// no account. The id is the only credential guarding the owner's entries.
func NewAnonymousOwnerID() (string, error) {
	suffix, err := RandomString(ownerIDLength, ownerIDAlphabet)
	if err != nil {
		return "", err
	}
	return AnonymousOwnerPrefix + suffix, nil
}

// RandomString returns a uniformly distributed string drawn from alphabet.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}
	return string(value), nil
}
