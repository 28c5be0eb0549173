package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
		Long:    "List the users of the company",
	}

	cmd.AddCommand(newUsersListCommand())

	return cmd
}

func newUsersListCommand() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(activeOnly)
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "show only active users")

	return cmd
}

func runUsersList(activeOnly bool) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	users, err := apiClient.Users().List(context.Background(), nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	if activeOnly {
		active := make([]stratus.User, 0, len(users))

		for _, user := range users {
			if user.Status == stratus.UserStatusActive {
				active = append(active, user)
			}
		}

		users = active
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(users)
	case OutputFormatYAML:
		return StandardYAMLRenderer(users)
	default:
		return renderUserTable(users)
	}
}

func renderUserTable(users []stratus.User) error {
	if len(users) == 0 {
		_, _ = os.Stdout.WriteString("No users found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Email", "ID", "Status")

	for _, user := range users {
		status := "inactive"
		if user.Status == stratus.UserStatusActive {
			status = "active"
		}

		_ = table.Append(user.RecordName(), user.Email, user.ID, status)
	}

	_ = table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%d user(s)\n", len(users))

	return nil
}
