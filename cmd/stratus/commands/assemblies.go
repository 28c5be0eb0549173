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

// NewAssembliesCommand creates the assemblies command group.
func NewAssembliesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assemblies",
		Aliases: []string{"assembly"},
		Short:   "Manage assemblies",
		Long:    "List the assemblies of a package",
	}

	cmd.AddCommand(newAssembliesListCommand())

	return cmd
}

func newAssembliesListCommand() *cobra.Command {
	var (
		project string
		pkg     string
		filter  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assemblies of a package",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssembliesList(project, pkg, filter)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project name or id (default: the targeted project)")
	cmd.Flags().StringVar(&pkg, "package", "", "package name or id (default: the targeted package)")
	cmd.Flags().StringVar(&filter, "filter", "", "show only names containing this substring")

	return cmd
}

func runAssembliesList(project, pkg, filter string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	proj, err := findProject(ctx, apiClient, project)
	if err != nil {
		return err
	}

	parent, err := findPackage(ctx, apiClient, proj.ID, pkg)
	if err != nil {
		return err
	}

	assemblies, err := apiClient.Assemblies().ListByPackage(ctx, parent.ID, nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	assemblies = filterVisible(stratus.KindAssembly, assemblies, filter)

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(assemblies)
	case OutputFormatYAML:
		return StandardYAMLRenderer(assemblies)
	default:
		return renderAssemblyTable(assemblies)
	}
}

func renderAssemblyTable(assemblies []stratus.Assembly) error {
	if len(assemblies) == 0 {
		_, _ = os.Stdout.WriteString("No assemblies found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "ID", "Description")

	for _, assembly := range assemblies {
		_ = table.Append(assembly.Name, assembly.ID, assembly.Description)
	}

	_ = table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%d assembly(ies)\n", len(assemblies))

	return nil
}
