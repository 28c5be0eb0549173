package commands

import (
	"context"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// NewHealthCommand creates the health command.
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show the service health report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth()
		},
	}
}

func runHealth() error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	report, err := apiClient.Health().Get(context.Background())
	if err != nil {
		return err
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(report)
	case OutputFormatYAML:
		return StandardYAMLRenderer(report)
	default:
		return renderHealthReport(report)
	}
}

func renderHealthReport(report *stratus.HealthReport) error {
	if len(report.Fields) == 0 && len(report.Rows) == 0 {
		_, _ = os.Stdout.WriteString("No health data returned\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)

	if len(report.Fields) > 0 {
		table.Header("Key", "Value")

		for _, field := range report.Fields {
			_ = table.Append(field.Key, field.Value)
		}

		_ = table.Render()

		return nil
	}

	header := make([]any, len(report.Columns))
	for i, column := range report.Columns {
		header[i] = column
	}

	table.Header(header...)

	for _, row := range report.Rows {
		cells := make([]any, len(report.Columns))
		for i, column := range report.Columns {
			cells[i] = row[column]
		}

		_ = table.Append(cells...)
	}

	_ = table.Render()

	return nil
}
