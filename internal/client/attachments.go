package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

var attachmentIncludeFields = []string{"id", "fileName", "createdDT"}

// AttachmentsClient implements stratus.AttachmentsClient.
type AttachmentsClient struct {
	httpClient *http.Client
	pageSize   int
}

// ListByPackage lists the attachments of one package.
func (c *AttachmentsClient) ListByPackage(ctx context.Context, packageID string) ([]stratus.Attachment, error) {
	params := defaultParams(nil, c.pageSize, attachmentIncludeFields...)

	path := fmt.Sprintf(constants.APIPathPackageAttachments, packageID)

	attachments, err := listAll[stratus.Attachment](ctx, c.httpClient, path, params)
	if err != nil {
		return attachments, fmt.Errorf("listing package attachments: %w", err)
	}

	return attachments, nil
}

// ListByAssembly lists the attachments of one assembly.
func (c *AttachmentsClient) ListByAssembly(ctx context.Context, assemblyID string) ([]stratus.Attachment, error) {
	params := defaultParams(nil, c.pageSize, attachmentIncludeFields...)

	path := fmt.Sprintf(constants.APIPathAssemblyAttachments, assemblyID)

	attachments, err := listAll[stratus.Attachment](ctx, c.httpClient, path, params)
	if err != nil {
		return attachments, fmt.Errorf("listing assembly attachments: %w", err)
	}

	return attachments, nil
}

// UploadToPackage posts one multipart file to a package. Attempted
// exactly once.
func (c *AttachmentsClient) UploadToPackage(ctx context.Context, packageID, fileName string, content io.Reader) error {
	path := fmt.Sprintf(constants.APIPathPackageAttachment, packageID)

	_, err := c.httpClient.PostMultipart(ctx, path, "file", fileName, content)
	if err != nil {
		return fmt.Errorf("uploading attachment %s: %w", fileName, err)
	}

	return nil
}

// UploadToAssembly posts one multipart file to an assembly. Attempted
// exactly once.
func (c *AttachmentsClient) UploadToAssembly(ctx context.Context, assemblyID, fileName string, content io.Reader) error {
	path := fmt.Sprintf(constants.APIPathAssemblyAttachment, assemblyID)

	_, err := c.httpClient.PostMultipart(ctx, path, "file", fileName, content)
	if err != nil {
		return fmt.Errorf("uploading attachment %s: %w", fileName, err)
	}

	return nil
}

// Download streams the attachment body into w and returns the number of
// bytes written.
func (c *AttachmentsClient) Download(ctx context.Context, attachmentID string, w io.Writer) (int64, error) {
	path := fmt.Sprintf(constants.APIPathAttachmentDownload, attachmentID)

	body, err := c.httpClient.GetStream(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("downloading attachment %s: %w", attachmentID, err)
	}
	defer func() { _ = body.Close() }()

	written, err := io.CopyBuffer(w, body, make([]byte, constants.DownloadChunkSize))
	if err != nil {
		return written, fmt.Errorf("downloading attachment %s: %w", attachmentID, err)
	}

	return written, nil
}

// DownloadAll downloads every attachment into dir sequentially. Each
// outcome is passed to report; per-file failures do not stop the loop.
func (c *AttachmentsClient) DownloadAll(ctx context.Context, attachments []stratus.Attachment, dir string, report func(stratus.Attachment, error)) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	for _, attachment := range attachments {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := c.downloadToDir(ctx, attachment, dir)

		if report != nil {
			report(attachment, err)
		}
	}

	return nil
}

func (c *AttachmentsClient) downloadToDir(ctx context.Context, attachment stratus.Attachment, dir string) error {
	name := filepath.Base(attachment.FileName)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = attachment.ID
	}

	file, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}

	_, err = c.Download(ctx, attachment.ID, file)

	closeErr := file.Close()
	if err != nil {
		return err
	}

	if closeErr != nil {
		return fmt.Errorf("writing %s: %w", name, closeErr)
	}

	return nil
}
