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

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		Long:    "List the projects visible to the configured app key",
	}

	cmd.AddCommand(newProjectsListCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsList(filter)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "show only names containing this substring")

	return cmd
}

func runProjectsList(filter string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	projects, err := apiClient.Projects().List(context.Background(), nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	projects = filterVisible(stratus.KindProject, projects, filter)

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(projects)
	case OutputFormatYAML:
		return StandardYAMLRenderer(projects)
	default:
		return renderProjectTable(projects)
	}
}

func renderProjectTable(projects []stratus.Project) error {
	if len(projects) == 0 {
		_, _ = os.Stdout.WriteString("No projects found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "ID")

	for _, project := range projects {
		_ = table.Append(project.Name, project.ID)
	}

	_ = table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%d project(s)\n", len(projects))

	return nil
}
