package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// envFileVar names an alternative to ./.env.
const envFileVar = "CALC_ENV_FILE"

// loadDotEnv loads environment variables from .env, or from the file named
// by CALC_ENV_FILE, when present. Existing process environment variables
// are not overridden. A missing default file is fine; a missing named file
// is not.
func loadDotEnv() error {
	path, named := os.LookupEnv(envFileVar)
	if !named || path == "" {
		path = ".env"
		named = false
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) && !named {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
