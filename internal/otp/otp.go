package otp

import (
	"fmt"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/keyage/internal/errors"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const uriScheme = "otpauth"

// Code returns the TOTP code for the otpauth URI at the given time.
// Leading and trailing whitespace, including the newline `insert` keeps
// out of stored secrets, is ignored.
func Code(uri string, at time.Time) (string, error) {
	key, err := parseKey(uri)
	if err != nil {
		return "", err
	}

	code, err := totp.GenerateCodeCustom(key.Secret(), at, totp.ValidateOpts{
		Period:    uint(key.Period()),
		Digits:    key.Digits(),
		Algorithm: key.Algorithm(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidOTP, err)
	}

	return code, nil
}

// Remaining returns how long the code generated at the given time stays valid.
func Remaining(uri string, at time.Time) (time.Duration, error) {
	key, err := parseKey(uri)
	if err != nil {
		return 0, err
	}

	period := int64(key.Period())
	if period == 0 {
		period = 30
	}
	left := period - at.Unix()%period

	return time.Duration(left) * time.Second, nil
}

// Label returns "issuer:account" for display, or just the account name.
func Label(uri string) (string, error) {
	key, err := parseKey(uri)
	if err != nil {
		return "", err
	}

	if key.Issuer() == "" {
		return key.AccountName(), nil
	}
	return key.Issuer() + ":" + key.AccountName(), nil
}

func parseKey(uri string) (*otp.Key, error) {
	key, err := otp.NewKeyFromURL(strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidOTP, err)
	}

	if !strings.HasPrefix(strings.TrimSpace(uri), uriScheme+"://") {
		return nil, fmt.Errorf("%w: expected an %s:// URI", kerrors.ErrInvalidOTP, uriScheme)
	}
	if key.Type() != "totp" {
		return nil, fmt.Errorf("%w: unsupported type %q", kerrors.ErrInvalidOTP, key.Type())
	}
	if key.Secret() == "" {
		return nil, fmt.Errorf("%w: missing secret", kerrors.ErrInvalidOTP)
	}

	return key, nil
}
