package util

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

const (
	LicenseKeyGroups    = 4
	LicenseKeyGroupSize = 5
	LicenseKeyPrefix    = "LIC"
)

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func generateRandomString(length int) (string, error) {
	byteLength := (length*5 + 7) / 8
	b, err := generateRandomBytes(byteLength)
	if err != nil {
		return "", err
	}

	str := keyEncoding.EncodeToString(b)
	if len(str) > length {
		return str[:length], nil
	}
	return str, nil
}

// GenerateLicenseKey returns a key shaped LIC-XXXXX-XXXXX-XXXXX-XXXXX using
// the upper-case base32 alphabet.
func GenerateLicenseKey() (string, error) {
	body, err := generateRandomString(LicenseKeyGroups * LicenseKeyGroupSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate license key: %w", err)
	}

	groups := make([]string, 0, LicenseKeyGroups+1)
	groups = append(groups, LicenseKeyPrefix)
	for i := 0; i < LicenseKeyGroups; i++ {
		groups = append(groups, body[i*LicenseKeyGroupSize:(i+1)*LicenseKeyGroupSize])
	}
	return strings.Join(groups, "-"), nil
}

// TruncateKey shortens a key for table display, appending "..." when cut.
func TruncateKey(key string, n int) string {
	if n <= 0 || len(key) <= n {
		return key
	}
	return key[:n] + "..."
}
