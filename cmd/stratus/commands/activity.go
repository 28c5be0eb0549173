package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// NewActivityCommand creates the activity command group.
func NewActivityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show activity logs",
		Long:  "List recent activity log entries for the company",
	}

	cmd.AddCommand(newActivityListCommand())

	return cmd
}

func newActivityListCommand() *cobra.Command {
	var sinceDays int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivityList(sinceDays)
		},
	}

	cmd.Flags().IntVar(&sinceDays, "since-days", constants.DefaultSinceDays, "how many days back to list")

	return cmd
}

func runActivityList(sinceDays int) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	entries, err := apiClient.Activity().List(context.Background(), sinceDays, nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(entries)
	case OutputFormatYAML:
		return StandardYAMLRenderer(entries)
	default:
		return renderActivityTable(entries)
	}
}

func renderActivityTable(entries []stratus.ActivityLog) error {
	if len(entries) == 0 {
		_, _ = os.Stdout.WriteString("No activity found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Created", "User", "Project", "Action", "Name", "Value", "Station")

	for _, entry := range entries {
		action := entry.ActionName
		if action == "" {
			action = entry.Action
		}

		_ = table.Append(entry.CreatedDT, entry.CreatedByName, entry.ProjectName, action, entry.Name, entry.Value, entry.StationName)
	}

	_ = table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%d entry(ies)\n", len(entries))

	return nil
}
