package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// NewAttachmentsCommand creates the attachments command group.
// Attachments belong to either a package or an assembly; the --assembly
// flag (or a targeted assembly) picks the assembly scope, otherwise the
// package scope applies.
func NewAttachmentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attachments",
		Aliases: []string{"attachment"},
		Short:   "Manage attachments",
		Long:    "List, download and upload package and assembly attachments",
	}

	cmd.AddCommand(newAttachmentsListCommand())
	cmd.AddCommand(newAttachmentsDownloadCommand())
	cmd.AddCommand(newAttachmentsDownloadAllCommand())
	cmd.AddCommand(newAttachmentsUploadCommand())

	return cmd
}

// attachmentScope identifies the record the attachments hang off.
type attachmentScope struct {
	assemblyID string
	packageID  string
	label      string
}

// resolveAttachmentScope picks the assembly scope when an assembly is
// named or targeted, falling back to the package scope.
func resolveAttachmentScope(ctx context.Context, apiClient stratus.Client, project, pkg, assembly string) (*attachmentScope, error) {
	proj, err := findProject(ctx, apiClient, project)
	if err != nil {
		return nil, err
	}

	parent, err := findPackage(ctx, apiClient, proj.ID, pkg)
	if err != nil {
		return nil, err
	}

	if assembly == "" && viper.GetString(configKeyAssemblyID) == "" {
		return &attachmentScope{packageID: parent.ID, label: "package " + parent.Name}, nil
	}

	asm, err := findAssembly(ctx, apiClient, parent.ID, assembly)
	if err != nil {
		return nil, err
	}

	return &attachmentScope{assemblyID: asm.ID, label: "assembly " + asm.Name}, nil
}

func (s *attachmentScope) list(ctx context.Context, apiClient stratus.Client) ([]stratus.Attachment, error) {
	if s.assemblyID != "" {
		return apiClient.Attachments().ListByAssembly(ctx, s.assemblyID)
	}

	return apiClient.Attachments().ListByPackage(ctx, s.packageID)
}

func newAttachmentsListCommand() *cobra.Command {
	var (
		project  string
		pkg      string
		assembly string
		filter   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attachments of a package or assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttachmentsList(project, pkg, assembly, filter)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project name or id (default: the targeted project)")
	cmd.Flags().StringVar(&pkg, "package", "", "package name or id (default: the targeted package)")
	cmd.Flags().StringVar(&assembly, "assembly", "", "assembly name or id (default: the targeted assembly, if any)")
	cmd.Flags().StringVar(&filter, "filter", "", "show only file names containing this substring")

	return cmd
}

func runAttachmentsList(project, pkg, assembly, filter string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	scope, err := resolveAttachmentScope(ctx, apiClient, project, pkg, assembly)
	if err != nil {
		return err
	}

	attachments, err := scope.list(ctx, apiClient)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	kind := stratus.KindPackageAttachment
	if scope.assemblyID != "" {
		kind = stratus.KindAssemblyAttachment
	}

	attachments = filterVisible(kind, attachments, filter)

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(attachments)
	case OutputFormatYAML:
		return StandardYAMLRenderer(attachments)
	default:
		return renderAttachmentTable(attachments, scope.label)
	}
}

func renderAttachmentTable(attachments []stratus.Attachment, label string) error {
	if len(attachments) == 0 {
		_, _ = fmt.Fprintf(os.Stdout, "No attachments found for %s\n", label)

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("File Name", "ID", "Created")

	for _, attachment := range attachments {
		_ = table.Append(attachment.FileName, attachment.ID, attachment.CreatedDT)
	}

	_ = table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%d attachment(s) for %s\n", len(attachments), label)

	return nil
}

func newAttachmentsDownloadCommand() *cobra.Command {
	var (
		project  string
		pkg      string
		assembly string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "download FILE_NAME_OR_ID",
		Short: "Download one attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttachmentsDownload(project, pkg, assembly, args[0], output)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project name or id (default: the targeted project)")
	cmd.Flags().StringVar(&pkg, "package", "", "package name or id (default: the targeted package)")
	cmd.Flags().StringVar(&assembly, "assembly", "", "assembly name or id (default: the targeted assembly, if any)")
	cmd.Flags().StringVarP(&output, "output-file", "o", "", "destination path (default: the attachment's file name)")

	return cmd
}

func runAttachmentsDownload(project, pkg, assembly, nameOrID, output string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	scope, err := resolveAttachmentScope(ctx, apiClient, project, pkg, assembly)
	if err != nil {
		return err
	}

	attachments, err := scope.list(ctx, apiClient)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	attachment, ok := matchRecord(attachments, nameOrID)
	if !ok {
		return fmt.Errorf("attachment '%s': %w", nameOrID, ErrAttachmentNotFound)
	}

	if output == "" {
		output = filepath.Base(attachment.FileName)
		if output == "" || output == "." {
			output = attachment.ID
		}
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	defer func() { _ = file.Close() }()

	written, err := apiClient.Attachments().Download(ctx, attachment.ID, file)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Downloaded %s (%d bytes)\n", output, written)

	return nil
}

func newAttachmentsDownloadAllCommand() *cobra.Command {
	var (
		project  string
		pkg      string
		assembly string
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "download-all",
		Short: "Download every attachment of a package or assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttachmentsDownloadAll(project, pkg, assembly, dir)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project name or id (default: the targeted project)")
	cmd.Flags().StringVar(&pkg, "package", "", "package name or id (default: the targeted package)")
	cmd.Flags().StringVar(&assembly, "assembly", "", "assembly name or id (default: the targeted assembly, if any)")
	cmd.Flags().StringVar(&dir, "dir", ".", "destination directory")

	return cmd
}

func runAttachmentsDownloadAll(project, pkg, assembly, dir string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	scope, err := resolveAttachmentScope(ctx, apiClient, project, pkg, assembly)
	if err != nil {
		return err
	}

	attachments, err := scope.list(ctx, apiClient)

	err = warnOnPartialFetch(err)
	if err != nil {
		return err
	}

	if len(attachments) == 0 {
		_, _ = fmt.Fprintf(os.Stdout, "No attachments found for %s\n", scope.label)

		return nil
	}

	failures := 0

	err = apiClient.Attachments().DownloadAll(ctx, attachments, dir, func(attachment stratus.Attachment, err error) {
		if err != nil {
			failures++

			fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", attachment.FileName, err)

			return
		}

		_, _ = fmt.Fprintf(os.Stdout, "Downloaded %s\n", attachment.FileName)
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%d of %d attachment(s) downloaded to %s\n", len(attachments)-failures, len(attachments), dir)

	return nil
}

func newAttachmentsUploadCommand() *cobra.Command {
	var (
		project  string
		pkg      string
		assembly string
	)

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file as an attachment",
		Long:  "Upload a file to a package or assembly. The upload is attempted exactly once.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttachmentsUpload(project, pkg, assembly, args[0])
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project name or id (default: the targeted project)")
	cmd.Flags().StringVar(&pkg, "package", "", "package name or id (default: the targeted package)")
	cmd.Flags().StringVar(&assembly, "assembly", "", "assembly name or id (default: the targeted assembly, if any)")

	return cmd
}

func runAttachmentsUpload(project, pkg, assembly, path string) error {
	apiClient, err := CreateClient()
	if err != nil {
		return err
	}

	ctx := context.Background()

	scope, err := resolveAttachmentScope(ctx, apiClient, project, pkg, assembly)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	fileName := filepath.Base(path)

	if scope.assemblyID != "" {
		err = apiClient.Attachments().UploadToAssembly(ctx, scope.assemblyID, fileName, file)
	} else {
		err = apiClient.Attachments().UploadToPackage(ctx, scope.packageID, fileName, file)
	}

	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Uploaded %s to %s\n", fileName, scope.label)

	return nil
}
