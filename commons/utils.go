// SPDX-License-Identifier: GPL-3.0-only

package commons

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded = false

// LoadEnvFile loads the file given with --env-file, or ./.env when present.
// Variables already set in the process environment win.
func LoadEnvFile() {
	if envLoaded {
		return
	}
	envLoaded = true

	envFile := ".env"
	explicit := false
	args := os.Args[1:]
	for i, arg := range args {
		if arg == "--env-file" && i+1 < len(args) {
			envFile = args[i+1]
			explicit = true
			break
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		fmt.Printf("Failed to load env file %s: %s\n", envFile, err)
		return
	}
	fmt.Printf("Loaded environment variables from file: %s\n", envFile)
}

func GetEnv(key string, fallback ...string) string {
	LoadEnvFile()
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

func GetEnvInt(key string, fallback int) int {
	v := GetEnv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		Logger.Warnf("Invalid integer for %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return i
}

func GetEnvBool(key string, fallback bool) bool {
	v := GetEnv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		Logger.Warnf("Invalid boolean for %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func GetEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(GetEnvInt(key, fallback)) * time.Minute
}
