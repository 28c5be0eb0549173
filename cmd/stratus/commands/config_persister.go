package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fabshop-io/stratus-client/internal/constants"
)

// configFilePath returns the config file in use, defaulting to
// ~/.stratus/config.yml.
func configFilePath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+".yml"), nil
}

// loadConfigFile reads the config file into a map. A missing file is an
// empty config.
func loadConfigFile() (map[string]interface{}, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]interface{}{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	values := map[string]interface{}{}

	err = yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if values == nil {
		values = map[string]interface{}{}
	}

	return values, nil
}

// saveConfigValues merges the given values into the config file and
// writes it back. Viper picks the new values up on the next run; the
// in-process view is refreshed too so later command steps see them.
func saveConfigValues(values map[string]interface{}) error {
	existing, err := loadConfigFile()
	if err != nil {
		return err
	}

	for key, value := range values {
		existing[key] = value
		viper.Set(key, value)
	}

	return writeConfigFile(existing)
}

// unsetConfigValues removes keys from the config file.
func unsetConfigValues(keys ...string) error {
	existing, err := loadConfigFile()
	if err != nil {
		return err
	}

	for _, key := range keys {
		delete(existing, key)
		viper.Set(key, "")
	}

	return writeConfigFile(existing)
}

func writeConfigFile(values map[string]interface{}) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}

	return nil
}
