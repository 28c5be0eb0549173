package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// TrackingStatusesClient implements stratus.TrackingStatusesClient.
type TrackingStatusesClient struct {
	httpClient *http.Client
	pageSize   int
}

// List lists the company tracking statuses. The endpoint answers with
// either the usual data envelope or a bare array holding the complete
// result; both shapes are accepted.
func (c *TrackingStatusesClient) List(ctx context.Context, params *stratus.QueryParams) ([]stratus.TrackingStatus, error) {
	params = defaultParams(params, c.pageSize)

	statuses, err := stratus.FetchAll(ctx, c.fetchPage, params)
	if err != nil {
		return statuses, fmt.Errorf("listing tracking statuses: %w", err)
	}

	return statuses, nil
}

func (c *TrackingStatusesClient) fetchPage(ctx context.Context, params *stratus.QueryParams) (*stratus.ListResponse[stratus.TrackingStatus], error) {
	resp, err := c.httpClient.Get(ctx, constants.APIPathTrackingStatuses, params.ToValues())
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body)

	if len(body) > 0 && body[0] == '[' {
		var statuses []stratus.TrackingStatus

		err = json.Unmarshal(body, &statuses)
		if err != nil {
			return nil, fmt.Errorf("parsing list page: %w", err)
		}

		// A bare array is the whole result; flag the page so the
		// paginator stops even when it fills a full page.
		return &stratus.ListResponse[stratus.TrackingStatus]{Data: statuses, TruncatedResults: true}, nil
	}

	var page stratus.ListResponse[stratus.TrackingStatus]

	err = json.Unmarshal(body, &page)
	if err != nil {
		return nil, fmt.Errorf("parsing list page: %w", err)
	}

	return &page, nil
}
