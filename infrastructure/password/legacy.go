package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// passlib writes "$pbkdf2-sha256$<rounds>$<salt>$<checksum>" where salt and
// checksum use its "adapted base64": standard alphabet, '.' for '+', no padding.
const legacyPrefix = "$pbkdf2-sha256$"

func verifyLegacy(password, encoded string) (bool, error) {
	rounds, salt, sum, err := decodeLegacy(encoded)
	if err != nil {
		return false, err
	}
	other := pbkdf2.Key([]byte(password), salt, rounds, len(sum), sha256.New)
	return subtle.ConstantTimeCompare(sum, other) == 1, nil
}

func decodeLegacy(encoded string) (int, []byte, []byte, error) {
	parts := strings.Split(strings.TrimPrefix(encoded, legacyPrefix), "$")
	if len(parts) != 3 {
		return 0, nil, nil, ErrInvalidHash
	}
	rounds, err := strconv.Atoi(parts[0])
	if err != nil || rounds <= 0 {
		return 0, nil, nil, fmt.Errorf("%w: rounds", ErrInvalidHash)
	}
	salt, err := decodeAB64(parts[1])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: salt", ErrInvalidHash)
	}
	sum, err := decodeAB64(parts[2])
	if err != nil || len(sum) == 0 {
		return 0, nil, nil, fmt.Errorf("%w: checksum", ErrInvalidHash)
	}
	return rounds, salt, sum, nil
}

func decodeAB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}

func encodeAB64(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}
