package auth

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// EncodeUID encodes a user id for password reset links
func EncodeUID(id int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(id)))
}

// DecodeUID reverses EncodeUID
func DecodeUID(uidb64 string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uidb64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed uid", ErrInvalidToken)
	}
	id, err := strconv.Atoi(string(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: malformed uid", ErrInvalidToken)
	}
	return id, nil
}

// NewResetToken returns a random single-use reset token
func NewResetToken() string {
	return uuid.New().String()
}
