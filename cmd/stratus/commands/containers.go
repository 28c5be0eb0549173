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

// NewContainersCommand creates the containers command group.
func NewContainersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "containers",
		Aliases: []string{"container"},
		Short:   "Manage containers",
		Long:    "List the containers of the company",
	}

	cmd.AddCommand(newContainersListCommand())

	return cmd
}

func newContainersListCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContainersList(filter)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "show only names containing this substring")

	return cmd
}

func runContainersList(filter string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	containers, err := apiClient.Containers().List(context.Background(), nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	if filter != "" {
		filtered := make([]stratus.Container, 0, len(containers))

		for _, container := range containers {
			if containsFold(container.Name, filter) {
				filtered = append(filtered, container)
			}
		}

		containers = filtered
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(containers)
	case OutputFormatYAML:
		return StandardYAMLRenderer(containers)
	default:
		return renderContainerTable(containers)
	}
}

func renderContainerTable(containers []stratus.Container) error {
	if len(containers) == 0 {
		_, _ = os.Stdout.WriteString("No containers found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "ID", "Description")

	for _, container := range containers {
		_ = table.Append(container.Name, container.ID, container.Description)
	}

	_ = table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%d container(s)\n", len(containers))

	return nil
}
