// Package auth resolves the static app key used to authenticate against
// the Stratus API: from configuration, from a key=value credential file,
// or interactively.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// AppKeyField is the field name used in the credential file.
const AppKeyField = "app-key"

// KeyProvider supplies the app key for each request.
type KeyProvider interface {
	AppKey(ctx context.Context) (string, error)
}

// StaticKeyProvider holds a fixed app key.
type StaticKeyProvider struct {
	Key string
}

// AppKey implements KeyProvider.
func (p *StaticKeyProvider) AppKey(ctx context.Context) (string, error) {
	if p.Key == "" {
		return "", stratus.ErrAppKeyRequired
	}

	return p.Key, nil
}

// FileKeyStore reads and persists the app key in a key=value credential
// file. A bare single-line key (the legacy format) is also accepted.
type FileKeyStore struct {
	Path string
}

// DefaultKeyFilePath returns ~/.stratus/appkey.
func DefaultKeyFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.AppKeyFileName), nil
}

// AppKey implements KeyProvider by loading the file on each call. The
// file is small and this keeps externally rotated keys current.
func (s *FileKeyStore) AppKey(ctx context.Context) (string, error) {
	return s.Load()
}

// Load reads the app key from the credential file.
func (s *FileKeyStore) Load() (string, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return "", fmt.Errorf("reading credential file %s: %w", s.Path, err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		field, value, found := strings.Cut(line, "=")
		if !found {
			// Legacy format: the whole line is the key.
			return line, nil
		}

		if strings.TrimSpace(field) == AppKeyField {
			key := strings.TrimSpace(value)
			if key != "" {
				return key, nil
			}
		}
	}

	err = scanner.Err()
	if err != nil {
		return "", fmt.Errorf("reading credential file %s: %w", s.Path, err)
	}

	return "", fmt.Errorf("%w: no %s entry in %s", stratus.ErrAppKeyRequired, AppKeyField, s.Path)
}

// Save writes the app key back in key=value form, creating the parent
// directory when needed.
func (s *FileKeyStore) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return stratus.ErrAppKeyEmpty
	}

	err := os.MkdirAll(filepath.Dir(s.Path), 0o755)
	if err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	content := fmt.Sprintf("%s = %s\n", AppKeyField, key)

	err = os.WriteFile(s.Path, []byte(content), constants.AppKeyFilePermission)
	if err != nil {
		return fmt.Errorf("writing credential file %s: %w", s.Path, err)
	}

	return nil
}

// Resolve builds the key provider for a client configuration: an
// explicit key wins, otherwise the credential file is used.
func Resolve(config *stratus.Config) (KeyProvider, error) {
	if config.AppKey != "" {
		return &StaticKeyProvider{Key: config.AppKey}, nil
	}

	path := config.AppKeyFile
	if path == "" {
		var err error

		path, err = DefaultKeyFilePath()
		if err != nil {
			return nil, err
		}
	}

	store := &FileKeyStore{Path: path}

	// Fail fast on a missing key rather than on the first request.
	_, err := store.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no key configured and %s does not exist", stratus.ErrAppKeyRequired, path)
		}

		return nil, err
	}

	return store, nil
}
