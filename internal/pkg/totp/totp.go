// Package totp issues and checks the one-time codes printed next to a badge
// QR code, so a photocopied badge alone cannot clock someone in.
package totp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var validateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateSecret creates a secret for accountName and the otpauth:// URL an
// authenticator app or badge printer can enrol from.
func GenerateSecret(issuer, accountName string) (secret string, otpauthURL string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      validateOpts.Period,
		Digits:      validateOpts.Digits,
		Algorithm:   validateOpts.Algorithm,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// Verify checks code against secret at t, allowing one period of drift.
func Verify(code, secret string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, t, validateOpts)
	if err != nil {
		return false
	}
	return ok
}

// Code returns the code for secret at t.
func Code(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t, validateOpts)
}
