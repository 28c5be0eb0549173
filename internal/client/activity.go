package client

import (
	"context"
	"fmt"

	"github.com/fabshop-io/stratus-client/internal/constants"
	"github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

var activityIncludeFields = []string{
	"createdDT", "createdByName", "divisionName", "route",
	"projectName", "projectNumber", "projectColor",
	"modelName", "reference", "referenceName",
	"action", "actionName", "name", "value",
	"trackingStatusName", "trackingStatusColor", "stationName",
}

// ActivityClient implements stratus.ActivityClient.
type ActivityClient struct {
	httpClient *http.Client
	pageSize   int
}

// List returns activity entries created within the last sinceDays days.
// sinceDays at or below zero falls back to the default window.
func (c *ActivityClient) List(ctx context.Context, sinceDays int, params *stratus.QueryParams) ([]stratus.ActivityLog, error) {
	if sinceDays <= 0 {
		sinceDays = constants.DefaultSinceDays
	}

	params = defaultParams(params, c.pageSize, activityIncludeFields...).Clone()
	// The server evaluates the date expression; the client never
	// computes local timestamps for it.
	params.Where = fmt.Sprintf("createdDT ge DateTime.Now.AddDays(-%d)", sinceDays)

	entries, err := listAll[stratus.ActivityLog](ctx, c.httpClient, constants.APIPathActivity, params)
	if err != nil {
		return entries, fmt.Errorf("listing activity: %w", err)
	}

	return entries, nil
}
