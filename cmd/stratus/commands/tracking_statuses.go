package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// NewTrackingStatusesCommand creates the tracking-statuses command.
func NewTrackingStatusesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tracking-statuses",
		Short: "List company tracking statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrackingStatusesList()
		},
	}
}

func runTrackingStatusesList() error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	statuses, err := apiClient.TrackingStatuses().List(context.Background(), nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(statuses)
	case OutputFormatYAML:
		return StandardYAMLRenderer(statuses)
	default:
		return renderTrackingStatusTable(statuses)
	}
}

func renderTrackingStatusTable(statuses []stratus.TrackingStatus) error {
	if len(statuses) == 0 {
		_, _ = os.Stdout.WriteString("No tracking statuses found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "ID", "Sequence", "Color", "Assemblies")

	for _, status := range statuses {
		assemblies := "no"
		if status.CanAddToAssembly {
			assemblies = "yes"
		}

		_ = table.Append(status.Name, status.ID, strconv.Itoa(status.SequenceNumber), status.Color, assemblies)
	}

	_ = table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%d status(es)\n", len(statuses))

	return nil
}
