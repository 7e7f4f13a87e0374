package yiiep

import (
	"strings"

	"github.com/google/uuid"
)

// newNonce returns 32 hex characters drawn from crypto/rand. The platform treats it
// as a uniqueness hint per call; nothing here tracks or rejects repeats.
func newNonce() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
