// Package client implements the per-resource Stratus API clients on top
// of the internal transport.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fabshop-io/stratus-client/internal/auth"
	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// Client aggregates the per-resource clients and implements
// stratus.Client.
type Client struct {
	httpClient *http.Client

	projects         *ProjectsClient
	packages         *PackagesClient
	assemblies       *AssembliesClient
	attachments      *AttachmentsClient
	users            *UsersClient
	activity         *ActivityClient
	containers       *ContainersClient
	trackingStatuses *TrackingStatusesClient
	health           *HealthClient
}

// New creates a client from the given configuration, resolving the app
// key and wiring the optional response cache.
func New(config *stratus.Config) (*Client, error) {
	if config == nil {
		config = &stratus.Config{}
	}

	endpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if endpoint == "" {
		endpoint = constants.DefaultBaseURL
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", stratus.ErrAPIEndpointInvalid, endpoint)
	}

	keys, err := auth.Resolve(config)
	if err != nil {
		return nil, err
	}

	opts := []http.Option{
		http.WithDebug(config.Debug),
	}

	if config.Logger != nil {
		opts = append(opts, http.WithLogger(config.Logger))
	}

	if config.UserAgent != "" {
		opts = append(opts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := config.RetryMax
		if retryMax <= 0 {
			retryMax = constants.DefaultRetryMax
		}

		waitMin := config.RetryWaitMin
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, http.WithRetryConfig(retryMax, waitMin, waitMax))
	}

	if config.Cache != nil {
		manager, err := stratus.NewCacheManagerFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("configuring response cache: %w", err)
		}

		if manager != nil {
			opts = append(opts, http.WithCache(manager))
		}
	}

	httpClient := http.NewClient(endpoint, keys, opts...)

	return newWithTransport(httpClient, config.PageSize), nil
}

// newWithTransport wires the resource clients around a ready transport.
// Tests use it to point the client at an httptest server.
func newWithTransport(httpClient *http.Client, pageSize int) *Client {
	return &Client{
		httpClient:       httpClient,
		projects:         &ProjectsClient{httpClient: httpClient, pageSize: pageSize},
		packages:         &PackagesClient{httpClient: httpClient, pageSize: pageSize},
		assemblies:       &AssembliesClient{httpClient: httpClient, pageSize: pageSize},
		attachments:      &AttachmentsClient{httpClient: httpClient, pageSize: pageSize},
		users:            &UsersClient{httpClient: httpClient, pageSize: pageSize},
		activity:         &ActivityClient{httpClient: httpClient, pageSize: pageSize},
		containers:       &ContainersClient{httpClient: httpClient, pageSize: pageSize},
		trackingStatuses: &TrackingStatusesClient{httpClient: httpClient, pageSize: pageSize},
		health:           &HealthClient{httpClient: httpClient},
	}
}

// Projects returns the projects client.
func (c *Client) Projects() stratus.ProjectsClient { return c.projects }

// Packages returns the packages client.
func (c *Client) Packages() stratus.PackagesClient { return c.packages }

// Assemblies returns the assemblies client.
func (c *Client) Assemblies() stratus.AssembliesClient { return c.assemblies }

// Attachments returns the attachments client.
func (c *Client) Attachments() stratus.AttachmentsClient { return c.attachments }

// Users returns the users client.
func (c *Client) Users() stratus.UsersClient { return c.users }

// Activity returns the activity client.
func (c *Client) Activity() stratus.ActivityClient { return c.activity }

// Containers returns the containers client.
func (c *Client) Containers() stratus.ContainersClient { return c.containers }

// TrackingStatuses returns the tracking statuses client.
func (c *Client) TrackingStatuses() stratus.TrackingStatusesClient { return c.trackingStatuses }

// Health returns the health client.
func (c *Client) Health() stratus.HealthClient { return c.health }

// defaultParams fills in the standard parameters for a list call when
// the caller passed nil.
func defaultParams(params *stratus.QueryParams, pageSize int, include ...string) *stratus.QueryParams {
	if params != nil {
		return params
	}

	params = stratus.NewQueryParams(include...)
	if pageSize > 0 {
		params.PageSize = pageSize
	}

	return params
}

// listAll walks every page of a list endpoint and collects the records.
// A mid-listing fetch failure comes back as a *stratus.PartialFetchError
// alongside the records gathered so far.
func listAll[T any](ctx context.Context, httpClient *http.Client, path string, params *stratus.QueryParams) ([]T, error) {
	fetch := func(ctx context.Context, params *stratus.QueryParams) (*stratus.ListResponse[T], error) {
		resp, err := httpClient.Get(ctx, path, params.ToValues())
		if err != nil {
			return nil, err
		}

		var page stratus.ListResponse[T]

		err = json.Unmarshal(resp.Body, &page)
		if err != nil {
			return nil, fmt.Errorf("parsing list page: %w", err)
		}

		return &page, nil
	}

	return stratus.FetchAll(ctx, fetch, params)
}
