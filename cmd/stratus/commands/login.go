package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fabshop-io/stratus-client/internal/auth"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var appKey string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store and verify an API app key",
		Long: `Store the API app key in the credential file after verifying it
against the health endpoint. The key is prompted for when not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(appKey)
		},
	}

	cmd.Flags().StringVar(&appKey, "app-key", "", "API app key (prompted when omitted)")

	return cmd
}

func runLogin(appKey string) error {
	if appKey == "" {
		appKey = viper.GetString("app-key")
	}

	if appKey == "" {
		var err error

		appKey, err = auth.PromptKey(os.Stderr)
		if err != nil {
			return err
		}
	}

	config := &stratus.Config{
		APIEndpoint: viper.GetString("api"),
		AppKey:      appKey,
		Debug:       viper.GetBool("verbose"),
	}

	if config.Debug {
		config.Logger = &stderrLogger{}
	}

	apiClient, err := createClientFromConfig(config)
	if err != nil {
		return err
	}

	// Verify the key before persisting it.
	_, err = apiClient.Health().Get(context.Background())
	if err != nil {
		return fmt.Errorf("verifying app key: %w", err)
	}

	path := viper.GetString("app-key-file")
	if path == "" {
		path, err = auth.DefaultKeyFilePath()
		if err != nil {
			return err
		}
	}

	store := &auth.FileKeyStore{Path: path}

	err = store.Save(appKey)
	if err != nil {
		return err
	}

	if api := viper.GetString("api"); api != "" {
		err = saveConfigValues(map[string]interface{}{"api": api})
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "App key verified and saved to %s\n", path)

	return nil
}
