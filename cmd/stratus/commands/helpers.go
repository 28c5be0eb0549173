package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fabshop-io/stratus-client/internal/client"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Config keys holding the persisted target selection.
const (
	configKeyProjectID    = "target_project_id"
	configKeyProjectName  = "target_project_name"
	configKeyPackageID    = "target_package_id"
	configKeyPackageName  = "target_package_name"
	configKeyAssemblyID   = "target_assembly_id"
	configKeyAssemblyName = "target_assembly_name"
)

// Common static errors used throughout the commands package.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrPackageNotFound    = errors.New("package not found")
	ErrAssemblyNotFound   = errors.New("assembly not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidSetFormat   = errors.New("invalid --set format, expected field=value")
)

// CreateClient builds an API client from the effective configuration.
func CreateClient() (stratus.Client, error) {
	config := &stratus.Config{
		APIEndpoint: viper.GetString("api"),
		AppKey:      viper.GetString("app-key"),
		AppKeyFile:  viper.GetString("app-key-file"),
		Debug:       viper.GetBool("verbose"),
	}

	if config.Debug {
		config.Logger = &stderrLogger{}
	}

	return createClientFromConfig(config)
}

// createClientFromConfig builds a client from an explicit configuration.
func createClientFromConfig(config *stratus.Config) (stratus.Client, error) {
	apiClient, err := client.New(config)
	if err != nil {
		return nil, err
	}

	return apiClient, nil
}

// stderrLogger writes structured log records to stderr for --verbose.
type stderrLogger struct{}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }
func (l *stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l *stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l *stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	var sb strings.Builder

	sb.WriteString(level)
	sb.WriteString(" ")
	sb.WriteString(msg)

	for key, value := range fields {
		fmt.Fprintf(&sb, " %s=%v", key, value)
	}

	fmt.Fprintln(os.Stderr, sb.String())
}

// StandardJSONRenderer encodes data as indented JSON on stdout.
func StandardJSONRenderer(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer encodes data as YAML on stdout.
func StandardYAMLRenderer(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding to YAML: %w", err)
	}

	return nil
}

// warnOnPartialFetch downgrades a mid-listing fetch failure to a stderr
// warning: the records gathered before the failure are still shown, but
// the user is told the listing is incomplete.
func warnOnPartialFetch(err error) error {
	if err == nil {
		return nil
	}

	var partial *stratus.PartialFetchError
	if errors.As(err, &partial) {
		fmt.Fprintf(os.Stderr, "Warning: listing incomplete after %d page(s): %v\n", partial.Pages, partial.Err)

		return nil
	}

	return err
}

// recordsOf adapts a concrete resource slice to workspace records.
func recordsOf[T stratus.Record](items []T) []stratus.Record {
	records := make([]stratus.Record, len(items))
	for i, item := range items {
		records[i] = item
	}

	return records
}

// filterVisible narrows items to the ones whose names match the
// case-insensitive substring filter, preserving order.
func filterVisible[T stratus.Record](kind stratus.Kind, items []T, filter string) []T {
	if filter == "" {
		return items
	}

	ws := stratus.NewWorkspace()
	ws.ReplaceAll(kind, "", recordsOf(items))
	ws.SetFilter(kind, filter)

	visible := make(map[string]bool)
	for _, record := range ws.Visible(kind) {
		visible[record.RecordID()] = true
	}

	filtered := make([]T, 0, len(items))

	for _, item := range items {
		if visible[item.RecordID()] {
			filtered = append(filtered, item)
		}
	}

	return filtered
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// matchRecord finds the record whose id or name equals nameOrID, name
// matched case-insensitively.
func matchRecord[T stratus.Record](items []T, nameOrID string) (T, bool) {
	var zero T

	for _, item := range items {
		if item.RecordID() == nameOrID {
			return item, true
		}
	}

	for _, item := range items {
		if strings.EqualFold(item.RecordName(), nameOrID) {
			return item, true
		}
	}

	return zero, false
}

// findProject resolves a project by name or id, falling back to the
// persisted target when nameOrID is empty.
func findProject(ctx context.Context, apiClient stratus.Client, nameOrID string) (stratus.Project, error) {
	if nameOrID == "" {
		nameOrID = viper.GetString(configKeyProjectID)
	}

	if nameOrID == "" {
		return stratus.Project{}, stratus.ErrNoProjectTargeted
	}

	projects, err := apiClient.Projects().List(ctx, nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return stratus.Project{}, err
	}

	project, ok := matchRecord(projects, nameOrID)
	if !ok {
		return stratus.Project{}, fmt.Errorf("project '%s': %w", nameOrID, ErrProjectNotFound)
	}

	return project, nil
}

// findPackage resolves a package within a project by name or id,
// falling back to the persisted target when nameOrID is empty.
func findPackage(ctx context.Context, apiClient stratus.Client, projectID, nameOrID string) (stratus.Package, error) {
	if nameOrID == "" {
		nameOrID = viper.GetString(configKeyPackageID)
	}

	if nameOrID == "" {
		return stratus.Package{}, stratus.ErrNoPackageTargeted
	}

	packages, err := apiClient.Packages().ListByProject(ctx, projectID, nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return stratus.Package{}, err
	}

	pkg, ok := matchRecord(packages, nameOrID)
	if !ok {
		return stratus.Package{}, fmt.Errorf("package '%s': %w", nameOrID, ErrPackageNotFound)
	}

	return pkg, nil
}

// findAssembly resolves an assembly within a package by name or id,
// falling back to the persisted target when nameOrID is empty.
func findAssembly(ctx context.Context, apiClient stratus.Client, packageID, nameOrID string) (stratus.Assembly, error) {
	if nameOrID == "" {
		nameOrID = viper.GetString(configKeyAssemblyID)
	}

	if nameOrID == "" {
		return stratus.Assembly{}, stratus.ErrNoAssemblyTargeted
	}

	assemblies, err := apiClient.Assemblies().ListByPackage(ctx, packageID, nil)

	err = warnOnPartialFetch(err)
	if err != nil {
		return stratus.Assembly{}, err
	}

	assembly, ok := matchRecord(assemblies, nameOrID)
	if !ok {
		return stratus.Assembly{}, fmt.Errorf("assembly '%s': %w", nameOrID, ErrAssemblyNotFound)
	}

	return assembly, nil
}
