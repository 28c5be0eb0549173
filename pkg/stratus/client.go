package stratus

import (
	"context"
	"io"
	"time"
)

// ProjectsClient lists projects.
type ProjectsClient interface {
	List(ctx context.Context, params *QueryParams) ([]Project, error)
}

// PackagesClient lists and updates packages.
type PackagesClient interface {
	// ListByProject lists the packages of one project.
	ListByProject(ctx context.Context, projectID string, params *QueryParams) ([]Package, error)
	// UpdateProperties submits a partial property document keyed by
	// package id. It is attempted exactly once; failures are never
	// retried to avoid duplicate side effects.
	UpdateProperties(ctx context.Context, patch map[string]any) error
	// AssemblyCount counts the assemblies of one package.
	AssemblyCount(ctx context.Context, packageID string) (int, error)
}

// AssembliesClient lists assemblies.
type AssembliesClient interface {
	ListByPackage(ctx context.Context, packageID string, params *QueryParams) ([]Assembly, error)
}

// AttachmentsClient lists, uploads and downloads attachments.
type AttachmentsClient interface {
	ListByPackage(ctx context.Context, packageID string) ([]Attachment, error)
	ListByAssembly(ctx context.Context, assemblyID string) ([]Attachment, error)
	// UploadToPackage posts one multipart file. Attempted exactly once.
	UploadToPackage(ctx context.Context, packageID, fileName string, content io.Reader) error
	// UploadToAssembly posts one multipart file. Attempted exactly once.
	UploadToAssembly(ctx context.Context, assemblyID, fileName string, content io.Reader) error
	// Download streams the attachment body into w and returns the
	// number of bytes written.
	Download(ctx context.Context, attachmentID string, w io.Writer) (int64, error)
	// DownloadAll downloads every attachment into dir sequentially.
	// Per-file failures are passed to report and the loop continues.
	DownloadAll(ctx context.Context, attachments []Attachment, dir string, report func(Attachment, error)) error
}

// UsersClient lists users.
type UsersClient interface {
	List(ctx context.Context, params *QueryParams) ([]User, error)
}

// ActivityClient lists activity logs.
type ActivityClient interface {
	// List returns activity entries created within the last sinceDays
	// days.
	List(ctx context.Context, sinceDays int, params *QueryParams) ([]ActivityLog, error)
}

// ContainersClient lists containers.
type ContainersClient interface {
	List(ctx context.Context, params *QueryParams) ([]Container, error)
}

// TrackingStatusesClient lists company tracking statuses.
type TrackingStatusesClient interface {
	List(ctx context.Context, params *QueryParams) ([]TrackingStatus, error)
}

// HealthClient reads the service health report.
type HealthClient interface {
	Get(ctx context.Context) (*HealthReport, error)
}

// Client aggregates the per-resource clients.
type Client interface {
	Projects() ProjectsClient
	Packages() PackagesClient
	Assemblies() AssembliesClient
	Attachments() AttachmentsClient
	Users() UsersClient
	Activity() ActivityClient
	Containers() ContainersClient
	TrackingStatuses() TrackingStatusesClient
	Health() HealthClient
}

// Logger is the structured logging interface consumed by the transport
// layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration.
type Config struct {
	// APIEndpoint is the base URL of the Stratus API. Defaults to the
	// public endpoint when empty.
	APIEndpoint string

	// AppKey is the static API key sent as the app-key header on every
	// request. When empty the key is read from AppKeyFile.
	AppKey string

	// AppKeyFile is the path of the key=value credential file holding
	// the app key. Defaults to ~/.stratus/appkey.
	AppKeyFile string

	// HTTPTimeout bounds each network call. Defaults to 10 seconds.
	HTTPTimeout time.Duration

	// RetryMax is the number of retries after the first attempt for
	// idempotent GETs. Defaults to 2 (three attempts overall).
	// Mutations are never retried regardless of this setting.
	RetryMax int

	// RetryWaitMin is the base backoff for transient server errors.
	RetryWaitMin time.Duration

	// RetryWaitMax caps the transient-error backoff. Rate-limit waits
	// follow the server's Retry-After and are not capped.
	RetryWaitMax time.Duration

	// PageSize overrides the default list page size.
	PageSize int

	// Debug enables request/response logging when a Logger is set.
	Debug bool

	// Logger receives transport-level log records.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Cache configures the optional response cache for idempotent
	// GETs. Nil disables caching.
	Cache *CacheConfig
}
