// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"cinema-server/commons"
)

// Policy selects how strict ValidatePassword is.
type Policy string

const (
	// PolicyNone only rejects empty passwords.
	PolicyNone Policy = "none"
	// PolicyStrict enforces length and character classes and, when
	// PWNED_PASSWORDS_ENABLED is true, rejects passwords from known breaches.
	PolicyStrict Policy = "strict"
)

var ErrEmptyPassword = errors.New("password must not be empty")

var (
	pwnedRangeURL = "https://api.pwnedpasswords.com/range/"
	httpClient    = &http.Client{Timeout: 5 * time.Second}
)

func ParsePolicy(s string) Policy {
	if Policy(strings.ToLower(s)) == PolicyStrict {
		return PolicyStrict
	}
	return PolicyNone
}

func ValidatePassword(ctx context.Context, password string, policy Policy) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if policy != PolicyStrict {
		return nil
	}

	if len([]rune(password)) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	if !hasUppercase(password) {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLowercase(password) {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasDigit(password) {
		return errors.New("password must contain at least one digit")
	}
	if !hasSpecialChar(password) {
		return errors.New("password must contain at least one special character (e.g., !@#$%)")
	}

	if commons.GetEnvBool("PWNED_PASSWORDS_ENABLED", false) {
		pwned, err := checkPasswordPwned(ctx, password)
		if err != nil {
			commons.Logger.Error("Error checking pwned passwords:", err)
		}
		if pwned {
			return errors.New("password has been found in data breaches (pwned); choose a different one")
		}
	}

	return nil
}

// checkPasswordPwned queries the k-anonymity range API; only the first five
// hex digits of the SHA-1 leave the process.
func checkPasswordPwned(ctx context.Context, password string) (bool, error) {
	sum := sha1.Sum([]byte(password))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := hash[:5], hash[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pwnedRangeURL+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("HIBP API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("HIBP API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read HIBP response: %w", err)
	}

	for _, line := range strings.Split(string(body), "\n") {
		if hashSuffix, _, ok := strings.Cut(line, ":"); ok {
			if strings.TrimSpace(hashSuffix) == suffix {
				return true, nil
			}
		}
	}
	return false, nil
}

func hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasLowercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasSpecialChar(s string) bool {
	for _, r := range s {
		if unicode.IsSymbol(r) || unicode.IsPunct(r) {
			return true
		}
	}
	return false
}
