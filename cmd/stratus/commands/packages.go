package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// NewPackagesCommand creates the packages command group.
func NewPackagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "packages",
		Aliases: []string{"package"},
		Short:   "Manage packages",
		Long:    "List packages of a project and update package properties",
	}

	cmd.AddCommand(newPackagesListCommand())
	cmd.AddCommand(newPackagesShowCommand())
	cmd.AddCommand(newPackagesUpdateCommand())

	return cmd
}

func newPackagesListCommand() *cobra.Command {
	var (
		project string
		filter  string
		counts  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackagesList(project, filter, counts)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project name or id (default: the targeted project)")
	cmd.Flags().StringVar(&filter, "filter", "", "show only names containing this substring")
	cmd.Flags().BoolVar(&counts, "counts", false, "include per-package assembly counts (one extra request per package)")

	return cmd
}

func runPackagesList(project, filter string, counts bool) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	proj, err := findProject(ctx, apiClient, project)
	if err != nil {
		return err
	}

	packages, err := apiClient.Packages().ListByProject(ctx, proj.ID, nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	packages = filterVisible(stratus.KindPackage, packages, filter)

	if counts {
		for i := range packages {
			count, err := apiClient.Packages().AssemblyCount(ctx, packages[i].ID)

			err = warnOnPartialFetch(err)
			if err != nil {
				return err
			}

			packages[i].AssemblyCount = count
		}
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(packages)
	case OutputFormatYAML:
		return StandardYAMLRenderer(packages)
	default:
		return renderPackageTable(packages, counts)
	}
}

func renderPackageTable(packages []stratus.Package, counts bool) error {
	if len(packages) == 0 {
		_, _ = os.Stdout.WriteString("No packages found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)

	if counts {
		table.Header("Name", "ID", "Number", "Status", "Assemblies")
	} else {
		table.Header("Name", "ID", "Number", "Status")
	}

	for _, pkg := range packages {
		status := stratus.PackageStatusLabel(pkg.Status)

		if counts {
			_ = table.Append(pkg.Name, pkg.ID, pkg.Number, status, strconv.Itoa(pkg.AssemblyCount))
		} else {
			_ = table.Append(pkg.Name, pkg.ID, pkg.Number, status)
		}
	}

	_ = table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%d package(s)\n", len(packages))

	return nil
}

func newPackagesShowCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "show [NAME_OR_ID]",
		Short: "Show the editable properties of a package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nameOrID := ""
			if len(args) > 0 {
				nameOrID = args[0]
			}

			return runPackagesShow(project, nameOrID)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project name or id (default: the targeted project)")

	return cmd
}

func runPackagesShow(project, nameOrID string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	proj, err := findProject(ctx, apiClient, project)
	if err != nil {
		return err
	}

	pkg, err := findPackage(ctx, apiClient, proj.ID, nameOrID)
	if err != nil {
		return err
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(pkg)
	case OutputFormatYAML:
		return StandardYAMLRenderer(pkg)
	default:
		return renderPackageFields(&pkg)
	}
}

func renderPackageFields(pkg *stratus.Package) error {
	values := stratus.PackageFieldValues(pkg)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")

	_ = table.Append("id", pkg.ID)

	for _, field := range stratus.EditablePackageFields {
		_ = table.Append(field, values[field])
	}

	_ = table.Render()

	return nil
}

func newPackagesUpdateCommand() *cobra.Command {
	var (
		project string
		sets    []string
	)

	cmd := &cobra.Command{
		Use:   "update [NAME_OR_ID]",
		Short: "Update package properties",
		Long: `Update editable package properties. Each --set assigns one field;
only fields whose value actually differs from the server's current
state are submitted, in a single request that is never retried.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nameOrID := ""
			if len(args) > 0 {
				nameOrID = args[0]
			}

			return runPackagesUpdate(project, nameOrID, sets)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project name or id (default: the targeted project)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment, field=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func runPackagesUpdate(project, nameOrID string, sets []string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	proj, err := findProject(ctx, apiClient, project)
	if err != nil {
		return err
	}

	pkg, err := findPackage(ctx, apiClient, proj.ID, nameOrID)
	if err != nil {
		return err
	}

	// The just-fetched server state is the diff baseline, so a --set
	// that matches it is a no-op rather than a redundant write.
	snapshot := stratus.PackageFieldValues(&pkg)

	edited := make(map[string]string, len(snapshot))
	for field, value := range snapshot {
		edited[field] = value
	}

	for _, set := range sets {
		field, value, found := strings.Cut(set, "=")
		if !found || field == "" {
			return fmt.Errorf("%w: %q", ErrInvalidSetFormat, set)
		}

		edited[field] = value
	}

	patch, err := stratus.BuildPackagePatch(pkg.ID, snapshot, edited)
	if errors.Is(err, stratus.ErrNoChanges) {
		_, _ = os.Stdout.WriteString("Nothing to apply\n")

		return nil
	}

	if err != nil {
		return err
	}

	err = apiClient.Packages().UpdateProperties(ctx, patch)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Updated package %s (%d field(s))\n", pkg.Name, len(patch)-1)

	return nil
}
