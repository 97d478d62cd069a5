package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/machovotrish/luma/pkg/log"
)

// CredentialKey is the variable holding the agent API key in the env file.
const CredentialKey = "LUMA_API_KEY"

const envFile = ".env"

// LoadCredential reads the API key from the env file in the data directory,
// falling back to the process environment. Read once at startup; the value
// is held in memory afterwards.
func (s *Store) LoadCredential() string {
	path := filepath.Join(s.dir, envFile)

	vars, err := godotenv.Read(path)
	if err == nil {
		if key := strings.TrimSpace(vars[CredentialKey]); key != "" {
			return key
		}
	} else if !os.IsNotExist(err) {
		log.WithError(err).WithField("path", path).Error("failed to read env file")
	}

	return strings.TrimSpace(os.Getenv(CredentialKey))
}

// SaveCredential rewrites the API key in the env file, preserving any other
// variables already stored there.
func (s *Store) SaveCredential(key string) error {
	path := filepath.Join(s.dir, envFile)

	vars, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read env file: %w", err)
		}
		vars = map[string]string{}
	}

	vars[CredentialKey] = strings.TrimSpace(key)

	if err := godotenv.Write(vars, path); err != nil {
		log.WithError(err).WithField("path", path).Error("failed to write env file")
		return fmt.Errorf("failed to write env file: %w", err)
	}

	log.WithField("path", path).Info("credential saved")
	return nil
}
