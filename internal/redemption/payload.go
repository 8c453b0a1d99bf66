package redemption

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// PayloadType discriminates redemption QR codes from any other
// scannable payload kind added later.
const PayloadType = "FRESHWALLET_REDEEM"

var ErrInvalidPayload = errors.New("invalid redemption payload")

type QRPayload struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// NewToken returns a 64-character unguessable token value.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func EncodePayload(token string) (string, error) {
	data, err := json.Marshal(QRPayload{Type: PayloadType, Token: token})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParsePayload extracts the token from a scanned string. Anything that
// is not a well-formed redemption payload is rejected outright.
func ParsePayload(raw string) (string, error) {
	var payload QRPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", ErrInvalidPayload
	}
	if payload.Type != PayloadType || payload.Token == "" {
		return "", ErrInvalidPayload
	}
	return payload.Token, nil
}
