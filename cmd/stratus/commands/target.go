package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// NewTargetCommand creates the target command group. Targets form a
// chain: targeting a project clears the package and assembly targets,
// targeting a package clears the assembly target.
func NewTargetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Show or set the targeted project, package and assembly",
		Long: `Show or set the targeted project, package and assembly. Most list
and update commands operate on the current target when no resource is
named explicitly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargetShow()
		},
	}

	cmd.AddCommand(newTargetProjectCommand())
	cmd.AddCommand(newTargetPackageCommand())
	cmd.AddCommand(newTargetAssemblyCommand())
	cmd.AddCommand(newTargetClearCommand())

	return cmd
}

func runTargetShow() error {
	show := func(label, id, name string) {
		if id == "" {
			_, _ = fmt.Fprintf(os.Stdout, "%s: (none)\n", label)

			return
		}

		_, _ = fmt.Fprintf(os.Stdout, "%s: %s (%s)\n", label, name, id)
	}

	show("Project", viper.GetString(configKeyProjectID), viper.GetString(configKeyProjectName))
	show("Package", viper.GetString(configKeyPackageID), viper.GetString(configKeyPackageName))
	show("Assembly", viper.GetString(configKeyAssemblyID), viper.GetString(configKeyAssemblyName))

	return nil
}

func newTargetProjectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "project NAME_OR_ID",
		Short: "Target a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			projects, err := apiClient.Projects().List(ctx, nil)

			err = warnOnPartialFetch(err)
			if err != nil {
				return err
			}

			project, cleared, err := selectTarget(stratus.KindProject, recordsOf(projects), args[0])
			if err != nil {
				return fmt.Errorf("project '%s': %w", args[0], err)
			}

			err = saveConfigValues(map[string]interface{}{
				configKeyProjectID:   project.RecordID(),
				configKeyProjectName: project.RecordName(),
			})
			if err != nil {
				return err
			}

			err = clearDependentTargets(cleared)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Targeted project %s (%s)\n", project.RecordName(), project.RecordID())

			return nil
		},
	}
}

func newTargetPackageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "package NAME_OR_ID",
		Short: "Target a package within the targeted project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := viper.GetString(configKeyProjectID)
			if projectID == "" {
				return stratus.ErrNoProjectTargeted
			}

			apiClient, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			packages, err := apiClient.Packages().ListByProject(ctx, projectID, nil)

			err = warnOnPartialFetch(err)
			if err != nil {
				return err
			}

			pkg, cleared, err := selectTarget(stratus.KindPackage, recordsOf(packages), args[0])
			if err != nil {
				return fmt.Errorf("package '%s': %w", args[0], err)
			}

			err = saveConfigValues(map[string]interface{}{
				configKeyPackageID:   pkg.RecordID(),
				configKeyPackageName: pkg.RecordName(),
			})
			if err != nil {
				return err
			}

			err = clearDependentTargets(cleared)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Targeted package %s (%s)\n", pkg.RecordName(), pkg.RecordID())

			return nil
		},
	}
}

func newTargetAssemblyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assembly NAME_OR_ID",
		Short: "Target an assembly within the targeted package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packageID := viper.GetString(configKeyPackageID)
			if packageID == "" {
				return stratus.ErrNoPackageTargeted
			}

			apiClient, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			assemblies, err := apiClient.Assemblies().ListByPackage(ctx, packageID, nil)

			err = warnOnPartialFetch(err)
			if err != nil {
				return err
			}

			assembly, cleared, err := selectTarget(stratus.KindAssembly, recordsOf(assemblies), args[0])
			if err != nil {
				return fmt.Errorf("assembly '%s': %w", args[0], err)
			}

			err = saveConfigValues(map[string]interface{}{
				configKeyAssemblyID:   assembly.RecordID(),
				configKeyAssemblyName: assembly.RecordName(),
			})
			if err != nil {
				return err
			}

			err = clearDependentTargets(cleared)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Targeted assembly %s (%s)\n", assembly.RecordName(), assembly.RecordID())

			return nil
		},
	}
}

func newTargetClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the target chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := unsetConfigValues(
				configKeyProjectID, configKeyProjectName,
				configKeyPackageID, configKeyPackageName,
				configKeyAssemblyID, configKeyAssemblyName,
			)
			if err != nil {
				return err
			}

			_, _ = os.Stdout.WriteString("Target cleared\n")

			return nil
		},
	}
}

// selectTarget validates the chosen record against a workspace holding
// the fresh listing and reports which dependent kinds its selection
// invalidates.
func selectTarget(kind stratus.Kind, records []stratus.Record, nameOrID string) (stratus.Record, []stratus.Kind, error) {
	record, ok := matchRecord(records, nameOrID)
	if !ok {
		return nil, nil, ErrTargetNotFound(kind)
	}

	ws := stratus.NewWorkspace()
	ws.ReplaceAll(kind, "", records)

	err := ws.Select(kind, record.RecordID())
	if err != nil {
		return nil, nil, err
	}

	cleared := ws.Deselect(kind)

	return record, cleared, nil
}

// ErrTargetNotFound maps a kind to its not-found error.
func ErrTargetNotFound(kind stratus.Kind) error {
	switch kind {
	case stratus.KindPackage:
		return ErrPackageNotFound
	case stratus.KindAssembly:
		return ErrAssemblyNotFound
	default:
		return ErrProjectNotFound
	}
}

// clearDependentTargets removes the persisted targets for the kinds a
// new selection invalidated.
func clearDependentTargets(cleared []stratus.Kind) error {
	var keys []string

	for _, kind := range cleared {
		switch kind {
		case stratus.KindPackage:
			keys = append(keys, configKeyPackageID, configKeyPackageName)
		case stratus.KindAssembly:
			keys = append(keys, configKeyAssemblyID, configKeyAssemblyName)
		}
	}

	if len(keys) == 0 {
		return nil
	}

	return unsetConfigValues(keys...)
}
