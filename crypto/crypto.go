// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"cinema-server/commons"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("password verification failed")

func NewCrypto() *Crypto {
	return &Crypto{
		ArgonTime:    uint32(commons.GetEnvInt("ARGON2_TIME", 1)),
		ArgonMemory:  uint32(commons.GetEnvInt("ARGON2_MEMORY", 65536)),
		ArgonThreads: uint8(commons.GetEnvInt("ARGON2_THREADS", 2)),
		ArgonKeyLen:  uint32(commons.GetEnvInt("ARGON2_KEYLEN", 32)),
		ArgonSaltLen: uint32(commons.GetEnvInt("ARGON2_SALTLEN", 16)),
	}
}

func (c *Crypto) HashPassword(password string) (string, error) {
	commons.Logger.Debug("Hashing password")
	params := &argon2id.Params{
		Memory:      c.ArgonMemory,
		Iterations:  c.ArgonTime,
		Parallelism: c.ArgonThreads,
		SaltLength:  c.ArgonSaltLen,
		KeyLength:   c.ArgonKeyLen,
	}
	hash, err := argon2id.CreateHash(password, params)
	if err != nil {
		return "", err
	}
	commons.Logger.Debug("Password hashed")
	return hash, nil
}

// VerifyPassword returns nil when password matches encodedHash. Digests
// imported from the previous deployment are bcrypt ("$2a$", "$2b$", ...).
func (c *Crypto) VerifyPassword(password, encodedHash string) error {
	commons.Logger.Debug("Verifying password")
	if strings.HasPrefix(encodedHash, "$2") {
		if err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return ErrPasswordMismatch
			}
			return err
		}
		return nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, encodedHash)
	if err != nil {
		return err
	}
	if !match {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether encodedHash was produced by a legacy algorithm.
func NeedsRehash(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2")
}

func GenerateRandomString(prefix string, length int, encoding string) (string, error) {
	supported_encodings := []string{"hex", "base64"}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	switch encoding {
	case "hex":
		return prefix + hex.EncodeToString(b), nil
	case "base64":
		return prefix + base64.RawURLEncoding.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s, Supported encodings are: %s", encoding, supported_encodings)
	}
}
