// Package constants centralizes endpoint paths and client defaults.
package constants

import "time"

// DefaultBaseURL is the public Stratus API endpoint.
const DefaultBaseURL = "https://api.gtpstratus.com"

// API paths. Parent-scoped paths are format strings taking the parent
// resource id.
const (
	APIPathProject             = "/v2/project"
	APIPathPackage             = "/v1/package"
	APIPathPackageProperties   = "/v2/package/properties"
	APIPathActivity            = "/v1/activity"
	APIPathUser                = "/v2/user"
	APIPathContainer           = "/v1/container"
	APIPathTrackingStatuses    = "/v1/company/tracking-statuses"
	APIPathHealth              = "/health"
	APIPathPackageAssemblies   = "/v2/package/%s/assemblies"
	APIPathPackageAttachments  = "/v1/package/%s/attachments"
	APIPathAssemblyAttachments = "/v1/assembly/%s/attachments"
	APIPathPackageAttachment   = "/v1/package/%s/attachment"
	APIPathAssemblyAttachment  = "/v1/assembly/%s/attachment"
	APIPathAttachmentDownload  = "/v1/attachment/%s/download"
)

// AppKeyHeader is the header carrying the static API key.
const AppKeyHeader = "app-key"

// Transport defaults.
const (
	DefaultHTTPTimeout   = 10 * time.Second
	DefaultRetryMax      = 2 // three attempts overall
	DefaultRetryWaitMin  = 1 * time.Second
	DefaultRetryWaitMax  = 30 * time.Second
	RetryJitterMax       = 100 * time.Millisecond
	DefaultRetryAfter    = 60 * time.Second
	DownloadChunkSize    = 8192
	DefaultUserAgent     = "stratus-client/1.0"
	DefaultSinceDays     = 30
	ConfigDirName        = ".stratus"
	ConfigFileName       = "config"
	AppKeyFileName       = "appkey"
	AppKeyFilePermission = 0o600
)
