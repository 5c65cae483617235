// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyStrict, ParsePolicy("STRICT"))
	assert.Equal(t, PolicyNone, ParsePolicy(""))
	assert.Equal(t, PolicyNone, ParsePolicy("whatever"))
}

func TestValidatePasswordNone(t *testing.T) {
	assert.NoError(t, ValidatePassword(context.Background(), "pw1", PolicyNone))
	assert.ErrorIs(t, ValidatePassword(context.Background(), "", PolicyNone), ErrEmptyPassword)
}

func TestValidatePasswordStrict(t *testing.T) {
	t.Setenv("PWNED_PASSWORDS_ENABLED", "false")

	cases := map[string]string{
		"Ab1!":      "at least 8 characters",
		"abcdefg1!": "uppercase",
		"ABCDEFG1!": "lowercase",
		"Abcdefgh!": "digit",
		"Abcdefgh1": "special character",
	}
	for password, want := range cases {
		err := ValidatePassword(context.Background(), password, PolicyStrict)
		require.Error(t, err, password)
		assert.Contains(t, err.Error(), want)
	}

	assert.NoError(t, ValidatePassword(context.Background(), "Cinema#2024", PolicyStrict))
}

func TestValidatePasswordPwned(t *testing.T) {
	t.Setenv("PWNED_PASSWORDS_ENABLED", "true")

	const breached = "Password1!"
	sum := sha1.Sum([]byte(breached))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/"+hash[:5]) {
			fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n%s:42\r\n", hash[5:])
			return
		}
		fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n")
	}))
	defer srv.Close()

	prev := pwnedRangeURL
	pwnedRangeURL = srv.URL + "/range/"
	t.Cleanup(func() { pwnedRangeURL = prev })

	err := ValidatePassword(context.Background(), breached, PolicyStrict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pwned")

	assert.NoError(t, ValidatePassword(context.Background(), "Cinema#2024", PolicyStrict))
}
